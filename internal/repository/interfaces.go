package repository

import (
	"context"
	"time"

	"openlab/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	// ListEngagement returns every user joined with the engagement sums over
	// all of that user's projects, ordered by registration time. Input to
	// the ranking fold.
	ListEngagement(ctx context.Context) ([]UserEngagement, error)
}

// UserEngagement is one row of the ranking input: a user plus the raw
// engagement sums aggregated from their projects.
type UserEngagement struct {
	model.UserSummary
	Stats model.EngagementStats
}

type FollowRepository interface {
	// Follow inserts the follow edge and bumps both denormalized counters in
	// a single transaction. Returns model.ErrAlreadyFollowing if the edge
	// already exists.
	Follow(ctx context.Context, followerID, followeeID int64) error
	// Unfollow is the mirror of Follow. Returns model.ErrNotFollowing if the
	// edge does not exist.
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, projectID, authorID int64, req *model.UpdateProjectRequest) (*model.Project, error)
	// Delete removes the project row. Comments are intentionally not
	// cascade-deleted.
	Delete(ctx context.Context, projectID, authorID int64) error
	GetByID(ctx context.Context, projectID int64) (*model.Project, error)
	ListByAuthor(ctx context.Context, authorID int64, includeHidden bool) ([]model.Project, error)
	ListVisible(ctx context.Context, search string) ([]model.Project, error)
	ListVisibleByAuthors(ctx context.Context, authorIDs []int64) ([]model.Project, error)
	ListSavedBy(ctx context.Context, userID int64) ([]model.Project, error)

	// Engagement mutations. Each runs membership row + counter in one
	// transaction so the counter/set invariant cannot drift.
	Like(ctx context.Context, projectID, userID int64) error
	Unlike(ctx context.Context, projectID, userID int64) error
	Save(ctx context.Context, projectID, userID int64) error
	Unsave(ctx context.Context, projectID, userID int64) error

	// GetLikers and GetSavers hydrate the membership sets for a batch of
	// projects in one query each.
	GetLikers(ctx context.Context, projectIDs []int64) (map[int64][]int64, error)
	GetSavers(ctx context.Context, projectIDs []int64) (map[int64][]int64, error)

	// UpdateAuthorName re-syncs the denormalized author_name on all of the
	// author's projects after a display-name change.
	UpdateAuthorName(ctx context.Context, authorID int64, authorName string) error
}

type CommentRepository interface {
	// Create inserts the comment and increments the project's comment
	// counter in one transaction.
	Create(ctx context.Context, comment *model.Comment) error
	ListByProject(ctx context.Context, projectID int64) ([]model.Comment, error)
}

type GroupRepository interface {
	// Upsert creates the group or overwrites name/description of an existing
	// one with the same slug, keeping the original creator and members.
	Upsert(ctx context.Context, group *model.Group) error
	GetAll(ctx context.Context) ([]model.Group, error)
	GetByID(ctx context.Context, groupID string) (*model.Group, error)
	Join(ctx context.Context, groupID string, userID int64) error
	Leave(ctx context.Context, groupID string, userID int64) error
	AssociateProject(ctx context.Context, groupID string, projectID int64) error
	RemoveProject(ctx context.Context, groupID string, projectID int64) error

	CreateDiscussion(ctx context.Context, discussion *model.Discussion) error
	ListDiscussions(ctx context.Context, groupID string) ([]model.Discussion, error)
	CreateDiscussionComment(ctx context.Context, comment *model.DiscussionComment) error
	ListDiscussionComments(ctx context.Context, discussionID int64) ([]model.DiscussionComment, error)
	DiscussionExists(ctx context.Context, groupID string, discussionID int64) (bool, error)
}

type ActionRepository interface {
	// Create appends one activity-log entry. Called by the activity worker,
	// never directly from a request path.
	Create(ctx context.Context, action *model.UserAction) error
	// Recent returns the newest entries for a user, newest first.
	Recent(ctx context.Context, userID int64, limit int) ([]model.UserAction, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
