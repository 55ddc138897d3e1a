package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"openlab/internal/model"
	"openlab/internal/queue"
	"openlab/internal/repository"
)

type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create publishes a new project and records the activity.
func (s *ProjectService) Create(ctx context.Context, userID int64, req *model.CreateProjectRequest) (*model.Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, model.ErrTitleRequired
	}
	if len(title) > model.MaxProjectTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if len(req.Description) > model.MaxProjectDescriptionLength {
		return nil, model.ErrDescriptionTooLong
	}
	if req.Category != "" && !model.IsValidCategory(req.Category) {
		return nil, model.ErrInvalidCategory
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	project := &model.Project{
		AuthorID:    userID,
		AuthorName:  author.Name(),
		Title:       title,
		Description: req.Description,
		Category:    req.Category,
		Visible:     visible,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	// Record activity (after commit, best-effort)
	s.publishProjectEvent(ctx, model.ActionCreateProject, userID, project.ID, project.Title)

	return project, nil
}

// GetByID retrieves a single project with membership sets hydrated.
// Hidden projects are only visible to their author.
func (s *ProjectService) GetByID(ctx context.Context, projectID int64, viewerID *int64) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !project.Visible && (viewerID == nil || *viewerID != project.AuthorID) {
		return nil, model.ErrProjectNotFound
	}

	projects := []model.Project{*project}
	s.hydrate(ctx, projects, viewerID)
	return &projects[0], nil
}

// Update applies partial edits to a project. Only the author may edit.
func (s *ProjectService) Update(ctx context.Context, projectID, userID int64, req *model.UpdateProjectRequest) (*model.Project, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, model.ErrTitleRequired
		}
		if len(title) > model.MaxProjectTitleLength {
			return nil, model.ErrTitleTooLong
		}
		req.Title = &title
	}
	if req.Description != nil && len(*req.Description) > model.MaxProjectDescriptionLength {
		return nil, model.ErrDescriptionTooLong
	}
	if req.Category != nil && *req.Category != "" && !model.IsValidCategory(*req.Category) {
		return nil, model.ErrInvalidCategory
	}

	return s.projectRepo.Update(ctx, projectID, userID, req)
}

// Delete removes a project. Comments on it are intentionally left in
// place, so past contributions stay on the record.
func (s *ProjectService) Delete(ctx context.Context, projectID, userID int64) error {
	return s.projectRepo.Delete(ctx, projectID, userID)
}

// ListByAuthor returns an author's projects. Hidden projects are included
// only when the author is viewing their own portfolio.
func (s *ProjectService) ListByAuthor(ctx context.Context, authorID int64, viewerID *int64) ([]model.Project, error) {
	includeHidden := viewerID != nil && *viewerID == authorID
	projects, err := s.projectRepo.ListByAuthor(ctx, authorID, includeHidden)
	if err != nil {
		return nil, err
	}
	s.hydrate(ctx, projects, viewerID)
	return projects, nil
}

// ListVisible returns the public explore listing, optionally filtered by a
// search term over title and description.
func (s *ProjectService) ListVisible(ctx context.Context, search string, viewerID *int64) ([]model.Project, error) {
	projects, err := s.projectRepo.ListVisible(ctx, search)
	if err != nil {
		return nil, err
	}
	s.hydrate(ctx, projects, viewerID)
	return projects, nil
}

// ListSaved returns the projects a user has saved, newest save first.
func (s *ProjectService) ListSaved(ctx context.Context, userID int64) ([]model.Project, error) {
	projects, err := s.projectRepo.ListSavedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.hydrate(ctx, projects, &userID)
	return projects, nil
}

// Like records a like. The membership row and the counter move in one
// repository transaction. Liking twice returns model.ErrAlreadyLiked with
// no state change.
func (s *ProjectService) Like(ctx context.Context, projectID, userID int64) error {
	if err := s.projectRepo.Like(ctx, projectID, userID); err != nil {
		return err
	}

	if title, err := s.projectTitle(ctx, projectID); err == nil {
		s.publishProjectEvent(ctx, model.ActionLikedProject, userID, projectID, title)
	}
	return nil
}

// Unlike removes a like. Returns model.ErrNotLiked if there was none.
func (s *ProjectService) Unlike(ctx context.Context, projectID, userID int64) error {
	return s.projectRepo.Unlike(ctx, projectID, userID)
}

// Save bookmarks a project for the user.
func (s *ProjectService) Save(ctx context.Context, projectID, userID int64) error {
	if err := s.projectRepo.Save(ctx, projectID, userID); err != nil {
		return err
	}

	if title, err := s.projectTitle(ctx, projectID); err == nil {
		s.publishProjectEvent(ctx, model.ActionSavedProject, userID, projectID, title)
	}
	return nil
}

// Unsave removes a bookmark. Returns model.ErrNotSaved if there was none.
func (s *ProjectService) Unsave(ctx context.Context, projectID, userID int64) error {
	return s.projectRepo.Unsave(ctx, projectID, userID)
}

// hydrate fills the membership sets and viewer flags for a batch of
// projects with one query per set. Failures degrade to empty sets.
func (s *ProjectService) hydrate(ctx context.Context, projects []model.Project, viewerID *int64) {
	if len(projects) == 0 {
		return
	}

	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	likers, err := s.projectRepo.GetLikers(ctx, ids)
	if err != nil {
		log.Printf("[ProjectService] Failed to hydrate likers: %v", err)
		likers = map[int64][]int64{}
	}
	savers, err := s.projectRepo.GetSavers(ctx, ids)
	if err != nil {
		log.Printf("[ProjectService] Failed to hydrate savers: %v", err)
		savers = map[int64][]int64{}
	}

	for i := range projects {
		p := &projects[i]
		p.LikedBy = likers[p.ID]
		p.SavedBy = savers[p.ID]
		if viewerID != nil {
			p.IsLiked = containsID(p.LikedBy, *viewerID)
			p.IsSaved = containsID(p.SavedBy, *viewerID)
		}
	}
}

func (s *ProjectService) projectTitle(ctx context.Context, projectID int64) (string, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	return project.Title, nil
}

func (s *ProjectService) publishProjectEvent(ctx context.Context, actionType string, userID, projectID int64, title string) {
	if s.publisher == nil {
		return
	}
	event := queue.NewProjectEvent(actionType, userID, projectID, title)
	if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
		log.Printf("[ProjectService] Failed to publish %s event: project=%d err=%v", actionType, projectID, err)
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
