package service

import (
	"context"

	"openlab/internal/model"
	"openlab/internal/repository"
)

// ActivityService reads the append-only activity log. Writing goes
// through the activity stream and worker, never through this service.
type ActivityService struct {
	actionRepo repository.ActionRepository
}

func NewActivityService(actionRepo repository.ActionRepository) *ActivityService {
	return &ActivityService{actionRepo: actionRepo}
}

// Recent returns a user's newest activity entries, newest first.
func (s *ActivityService) Recent(ctx context.Context, userID int64, limit int) ([]model.UserAction, error) {
	if limit <= 0 || limit > 50 {
		limit = model.ActivityDefaultLimit
	}
	return s.actionRepo.Recent(ctx, userID, limit)
}
