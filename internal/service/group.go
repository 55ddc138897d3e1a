package service

import (
	"context"
	"log"
	"strings"

	"openlab/internal/model"
	"openlab/internal/queue"
	"openlab/internal/repository"
)

// GroupService handles groups and their discussion threads.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	publisher queue.Publisher
}

func NewGroupService(
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Slugify derives the group id from its name: lowercased, with every run
// of non-alphanumeric characters collapsed to a single dash.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Create creates a group whose id is the slug of its name. Creating a
// group with a name that slugs to an existing id silently updates that
// group's name and description, keeping its creator and members.
func (s *GroupService) Create(ctx context.Context, userID int64, req *model.CreateGroupRequest) (*model.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrGroupNameRequired
	}
	if len(name) > model.MaxGroupNameLength {
		return nil, model.ErrGroupNameTooLong
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, model.ErrGroupNameRequired
	}

	group := &model.Group{
		ID:          slug,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   userID,
	}

	if err := s.groupRepo.Upsert(ctx, group); err != nil {
		return nil, err
	}

	return s.groupRepo.GetByID(ctx, slug)
}

// GetAll lists every group with its member count.
func (s *GroupService) GetAll(ctx context.Context) ([]model.Group, error) {
	return s.groupRepo.GetAll(ctx)
}

// GetByID returns a group with its member and project sets hydrated.
func (s *GroupService) GetByID(ctx context.Context, groupID string) (*model.Group, error) {
	return s.groupRepo.GetByID(ctx, groupID)
}

// Join adds the user to the group. Joining a group you are already in is
// a no-op, not an error.
func (s *GroupService) Join(ctx context.Context, groupID string, userID int64) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}

	if containsID(group.Members, userID) {
		return nil
	}

	if err := s.groupRepo.Join(ctx, groupID, userID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewJoinedGroupEvent(userID, group.ID, group.Name)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[GroupService] Failed to publish JoinedGroup event: group=%s err=%v", groupID, err)
		}
	}

	return nil
}

// Leave removes the user from the group. Leaving a group you are not in
// is a no-op.
func (s *GroupService) Leave(ctx context.Context, groupID string, userID int64) error {
	return s.groupRepo.Leave(ctx, groupID, userID)
}

// AssociateProject links a project to the group's showcase. Adding a
// project twice is a no-op. The project id is not validated: associations
// may reference projects that were since deleted or hidden.
func (s *GroupService) AssociateProject(ctx context.Context, groupID string, userID, projectID int64) error {
	return s.groupRepo.AssociateProject(ctx, groupID, projectID)
}

// RemoveProject unlinks a project from the group. Only the group creator
// may curate the showcase.
func (s *GroupService) RemoveProject(ctx context.Context, groupID string, userID, projectID int64) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != userID {
		return model.ErrNotGroupCreator
	}
	return s.groupRepo.RemoveProject(ctx, groupID, projectID)
}

// CreateDiscussion opens a discussion thread in the group.
func (s *GroupService) CreateDiscussion(ctx context.Context, groupID string, userID int64, req *model.CreateDiscussionRequest) (*model.Discussion, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, model.ErrTitleRequired
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	discussion := &model.Discussion{
		GroupID:    group.ID,
		Title:      title,
		Content:    req.Content,
		AuthorID:   userID,
		AuthorName: author.Name(),
	}

	if err := s.groupRepo.CreateDiscussion(ctx, discussion); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := queue.NewCreatedDiscussionEvent(userID, group.ID, group.Name, title)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[GroupService] Failed to publish CreatedDiscussion event: group=%s err=%v", groupID, err)
		}
	}

	return discussion, nil
}

// ListDiscussions returns a group's discussions, newest first.
func (s *GroupService) ListDiscussions(ctx context.Context, groupID string) ([]model.Discussion, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListDiscussions(ctx, groupID)
}

// CreateDiscussionComment replies inside a discussion thread.
func (s *GroupService) CreateDiscussionComment(ctx context.Context, groupID string, discussionID, userID int64, req *model.CreateDiscussionCommentRequest) (*model.DiscussionComment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrCommentContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrCommentTooLong
	}

	exists, err := s.groupRepo.DiscussionExists(ctx, groupID, discussionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrDiscussionNotFound
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.DiscussionComment{
		DiscussionID: discussionID,
		Content:      content,
		AuthorID:     userID,
		AuthorName:   author.Name(),
	}

	if err := s.groupRepo.CreateDiscussionComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListDiscussionComments returns a discussion's replies, oldest first.
func (s *GroupService) ListDiscussionComments(ctx context.Context, groupID string, discussionID int64) ([]model.DiscussionComment, error) {
	exists, err := s.groupRepo.DiscussionExists(ctx, groupID, discussionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrDiscussionNotFound
	}
	return s.groupRepo.ListDiscussionComments(ctx, discussionID)
}
