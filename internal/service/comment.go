package service

import (
	"context"
	"log"
	"strings"

	"openlab/internal/model"
	"openlab/internal/queue"
	"openlab/internal/repository"
)

// CommentService handles project comments. Comments are append-only and
// deliberately survive project deletion.
type CommentService struct {
	commentRepo repository.CommentRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create adds a comment to a project. The comment insert and the counter
// increment run in one repository transaction.
func (s *CommentService) Create(ctx context.Context, projectID, userID int64, req *model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrCommentContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrCommentTooLong
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ProjectID:  projectID,
		AuthorID:   userID,
		AuthorName: author.Name(),
		Content:    content,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Record activity (after commit, best-effort)
	if s.publisher != nil {
		if project, err := s.projectRepo.GetByID(ctx, projectID); err == nil {
			event := queue.NewProjectEvent(model.ActionAddComment, userID, projectID, project.Title)
			if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
				log.Printf("[CommentService] Failed to publish AddComment event: project=%d err=%v", projectID, err)
			}
		}
	}

	return comment, nil
}

// ListByProject returns the comment thread, oldest first.
// The project is not required to exist: comments on a deleted project
// remain readable.
func (s *CommentService) ListByProject(ctx context.Context, projectID int64) ([]model.Comment, error) {
	return s.commentRepo.ListByProject(ctx, projectID)
}
