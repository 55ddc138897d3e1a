package service

import (
	"context"
	"time"

	"openlab/internal/model"
	"openlab/internal/queue"
	"openlab/internal/repository"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository INTERFACES, so unit tests swap in mocks
// with per-test function fields instead of hitting a real database.

type mockUserRepository struct {
	createFn         func(ctx context.Context, user *model.User) error
	getByIDFn        func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn     func(ctx context.Context, email string) (*model.User, error)
	existsByEmailFn  func(ctx context.Context, email string) (bool, error)
	updateProfileFn  func(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error)
	searchFn         func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	listEngagementFn func(ctx context.Context) ([]repository.UserEngagement, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, req)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockUserRepository) ListEngagement(ctx context.Context) ([]repository.UserEngagement, error) {
	if m.listEngagementFn != nil {
		return m.listEngagementFn(ctx)
	}
	return nil, nil
}

type mockFollowRepository struct {
	followFn         func(ctx context.Context, followerID, followeeID int64) error
	unfollowFn       func(ctx context.Context, followerID, followeeID int64) error
	existsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowersFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	getFollowingFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	checkFollowsFn   func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	getFolloweeIDsFn func(ctx context.Context, userID int64) ([]int64, error)

	followCalls [][2]int64
}

func (m *mockFollowRepository) Follow(ctx context.Context, followerID, followeeID int64) error {
	m.followCalls = append(m.followCalls, [2]int64{followerID, followeeID})
	if m.followFn != nil {
		return m.followFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if m.unfollowFn != nil {
		return m.unfollowFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

type mockProjectRepository struct {
	createFn               func(ctx context.Context, project *model.Project) error
	updateFn               func(ctx context.Context, projectID, authorID int64, req *model.UpdateProjectRequest) (*model.Project, error)
	deleteFn               func(ctx context.Context, projectID, authorID int64) error
	getByIDFn              func(ctx context.Context, projectID int64) (*model.Project, error)
	listByAuthorFn         func(ctx context.Context, authorID int64, includeHidden bool) ([]model.Project, error)
	listVisibleFn          func(ctx context.Context, search string) ([]model.Project, error)
	listVisibleByAuthorsFn func(ctx context.Context, authorIDs []int64) ([]model.Project, error)
	listSavedByFn          func(ctx context.Context, userID int64) ([]model.Project, error)
	likeFn                 func(ctx context.Context, projectID, userID int64) error
	unlikeFn               func(ctx context.Context, projectID, userID int64) error
	saveFn                 func(ctx context.Context, projectID, userID int64) error
	unsaveFn               func(ctx context.Context, projectID, userID int64) error
	getLikersFn            func(ctx context.Context, projectIDs []int64) (map[int64][]int64, error)
	getSaversFn            func(ctx context.Context, projectIDs []int64) (map[int64][]int64, error)
	updateAuthorNameFn     func(ctx context.Context, authorID int64, authorName string) error

	likeCalls             [][2]int64
	updateAuthorNameCalls []string
}

func (m *mockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if m.createFn != nil {
		return m.createFn(ctx, project)
	}
	project.ID = 1
	return nil
}

func (m *mockProjectRepository) Update(ctx context.Context, projectID, authorID int64, req *model.UpdateProjectRequest) (*model.Project, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, projectID, authorID, req)
	}
	return nil, model.ErrProjectNotFound
}

func (m *mockProjectRepository) Delete(ctx context.Context, projectID, authorID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, projectID, authorID)
	}
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, projectID int64) (*model.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, projectID)
	}
	return nil, model.ErrProjectNotFound
}

func (m *mockProjectRepository) ListByAuthor(ctx context.Context, authorID int64, includeHidden bool) ([]model.Project, error) {
	if m.listByAuthorFn != nil {
		return m.listByAuthorFn(ctx, authorID, includeHidden)
	}
	return nil, nil
}

func (m *mockProjectRepository) ListVisible(ctx context.Context, search string) ([]model.Project, error) {
	if m.listVisibleFn != nil {
		return m.listVisibleFn(ctx, search)
	}
	return nil, nil
}

func (m *mockProjectRepository) ListVisibleByAuthors(ctx context.Context, authorIDs []int64) ([]model.Project, error) {
	if m.listVisibleByAuthorsFn != nil {
		return m.listVisibleByAuthorsFn(ctx, authorIDs)
	}
	return nil, nil
}

func (m *mockProjectRepository) ListSavedBy(ctx context.Context, userID int64) ([]model.Project, error) {
	if m.listSavedByFn != nil {
		return m.listSavedByFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProjectRepository) Like(ctx context.Context, projectID, userID int64) error {
	m.likeCalls = append(m.likeCalls, [2]int64{projectID, userID})
	if m.likeFn != nil {
		return m.likeFn(ctx, projectID, userID)
	}
	return nil
}

func (m *mockProjectRepository) Unlike(ctx context.Context, projectID, userID int64) error {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, projectID, userID)
	}
	return nil
}

func (m *mockProjectRepository) Save(ctx context.Context, projectID, userID int64) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, projectID, userID)
	}
	return nil
}

func (m *mockProjectRepository) Unsave(ctx context.Context, projectID, userID int64) error {
	if m.unsaveFn != nil {
		return m.unsaveFn(ctx, projectID, userID)
	}
	return nil
}

func (m *mockProjectRepository) GetLikers(ctx context.Context, projectIDs []int64) (map[int64][]int64, error) {
	if m.getLikersFn != nil {
		return m.getLikersFn(ctx, projectIDs)
	}
	return map[int64][]int64{}, nil
}

func (m *mockProjectRepository) GetSavers(ctx context.Context, projectIDs []int64) (map[int64][]int64, error) {
	if m.getSaversFn != nil {
		return m.getSaversFn(ctx, projectIDs)
	}
	return map[int64][]int64{}, nil
}

func (m *mockProjectRepository) UpdateAuthorName(ctx context.Context, authorID int64, authorName string) error {
	m.updateAuthorNameCalls = append(m.updateAuthorNameCalls, authorName)
	if m.updateAuthorNameFn != nil {
		return m.updateAuthorNameFn(ctx, authorID, authorName)
	}
	return nil
}

type mockCommentRepository struct {
	createFn        func(ctx context.Context, comment *model.Comment) error
	listByProjectFn func(ctx context.Context, projectID int64) ([]model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (m *mockCommentRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Comment, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, projectID)
	}
	return nil, nil
}

type mockGroupRepository struct {
	upsertFn                  func(ctx context.Context, group *model.Group) error
	getAllFn                  func(ctx context.Context) ([]model.Group, error)
	getByIDFn                 func(ctx context.Context, groupID string) (*model.Group, error)
	joinFn                    func(ctx context.Context, groupID string, userID int64) error
	leaveFn                   func(ctx context.Context, groupID string, userID int64) error
	associateProjectFn        func(ctx context.Context, groupID string, projectID int64) error
	removeProjectFn           func(ctx context.Context, groupID string, projectID int64) error
	createDiscussionFn        func(ctx context.Context, discussion *model.Discussion) error
	listDiscussionsFn         func(ctx context.Context, groupID string) ([]model.Discussion, error)
	createDiscussionCommentFn func(ctx context.Context, comment *model.DiscussionComment) error
	listDiscussionCommentsFn  func(ctx context.Context, discussionID int64) ([]model.DiscussionComment, error)
	discussionExistsFn        func(ctx context.Context, groupID string, discussionID int64) (bool, error)

	upsertCalls []*model.Group
	joinCalls   []string
}

func (m *mockGroupRepository) Upsert(ctx context.Context, group *model.Group) error {
	m.upsertCalls = append(m.upsertCalls, group)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, group)
	}
	return nil
}

func (m *mockGroupRepository) GetAll(ctx context.Context) ([]model.Group, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockGroupRepository) GetByID(ctx context.Context, groupID string) (*model.Group, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, groupID)
	}
	return nil, model.ErrGroupNotFound
}

func (m *mockGroupRepository) Join(ctx context.Context, groupID string, userID int64) error {
	m.joinCalls = append(m.joinCalls, groupID)
	if m.joinFn != nil {
		return m.joinFn(ctx, groupID, userID)
	}
	return nil
}

func (m *mockGroupRepository) Leave(ctx context.Context, groupID string, userID int64) error {
	if m.leaveFn != nil {
		return m.leaveFn(ctx, groupID, userID)
	}
	return nil
}

func (m *mockGroupRepository) AssociateProject(ctx context.Context, groupID string, projectID int64) error {
	if m.associateProjectFn != nil {
		return m.associateProjectFn(ctx, groupID, projectID)
	}
	return nil
}

func (m *mockGroupRepository) RemoveProject(ctx context.Context, groupID string, projectID int64) error {
	if m.removeProjectFn != nil {
		return m.removeProjectFn(ctx, groupID, projectID)
	}
	return nil
}

func (m *mockGroupRepository) CreateDiscussion(ctx context.Context, discussion *model.Discussion) error {
	if m.createDiscussionFn != nil {
		return m.createDiscussionFn(ctx, discussion)
	}
	discussion.ID = 1
	return nil
}

func (m *mockGroupRepository) ListDiscussions(ctx context.Context, groupID string) ([]model.Discussion, error) {
	if m.listDiscussionsFn != nil {
		return m.listDiscussionsFn(ctx, groupID)
	}
	return nil, nil
}

func (m *mockGroupRepository) CreateDiscussionComment(ctx context.Context, comment *model.DiscussionComment) error {
	if m.createDiscussionCommentFn != nil {
		return m.createDiscussionCommentFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (m *mockGroupRepository) ListDiscussionComments(ctx context.Context, discussionID int64) ([]model.DiscussionComment, error) {
	if m.listDiscussionCommentsFn != nil {
		return m.listDiscussionCommentsFn(ctx, discussionID)
	}
	return nil, nil
}

func (m *mockGroupRepository) DiscussionExists(ctx context.Context, groupID string, discussionID int64) (bool, error) {
	if m.discussionExistsFn != nil {
		return m.discussionExistsFn(ctx, groupID, discussionID)
	}
	return false, nil
}

// =============================================================================
// MOCK PUBLISHER AND CACHE
// =============================================================================

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.ActivityEvent) (string, error)
	events    []queue.ActivityEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	m.events = append(m.events, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1702000000000-0", nil
}

type mockLeaderboardCache struct {
	snapshot []model.RankedUser
	getErr   error
	setErr   error
	setCalls int
}

func (m *mockLeaderboardCache) Get(ctx context.Context) ([]model.RankedUser, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if m.snapshot == nil {
		return nil, false, nil
	}
	return m.snapshot, true, nil
}

func (m *mockLeaderboardCache) Set(ctx context.Context, ranked []model.RankedUser) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.snapshot = ranked
	return nil
}

func (m *mockLeaderboardCache) Invalidate(ctx context.Context) error {
	m.snapshot = nil
	return nil
}
