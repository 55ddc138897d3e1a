package service

import (
	"context"
	"log"
	"time"

	"openlab/internal/model"
	"openlab/internal/queue"
	"openlab/internal/repository"
)

// FollowService handles the two-sided follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Follow creates the follow edge. The edge insert and both counter bumps
// run in one repository transaction, so the counters can never drift from
// the edge set.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	followee, err := s.userRepo.GetByID(ctx, followeeID)
	if err != nil {
		return err
	}

	if err := s.followRepo.Follow(ctx, followerID, followeeID); err != nil {
		return err
	}

	// Publish activity event (after commit!)
	if s.publisher != nil {
		event := queue.NewFollowedUserEvent(followerID, followeeID, followee.Name())
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[FollowService] Failed to publish FollowedUser event: follower=%d followee=%d err=%v",
				followerID, followeeID, err)
		}
	}

	return nil
}

// Unfollow removes the follow edge, decrementing both counters.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	return s.followRepo.Unfollow(ctx, followerID, followeeID)
}

// GetFollowers retrieves users who follow the specified user with
// cursor-based pagination. The list fetch and the viewer enrichment stay
// as two queries so a failed enrichment degrades instead of failing the
// request.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowers(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return buildFollowListResponse(users, nextCursor), nil
}

// GetFollowing retrieves users that the specified user follows with
// cursor-based pagination.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowing(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return buildFollowListResponse(users, nextCursor), nil
}

// enrichWithFollowStatus performs one batch query (ANY($1), not N+1) to
// mark which listed users the viewer follows. On failure the list is
// returned with is_following=false.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}

	return users
}

func buildFollowListResponse(users []model.UserSummary, nextCursor *time.Time) *model.FollowListResponse {
	var nextCursorStr *string
	if nextCursor != nil {
		str := nextCursor.Format(time.RFC3339Nano)
		nextCursorStr = &str
	}

	return &model.FollowListResponse{
		Users:      users,
		NextCursor: nextCursorStr,
		HasMore:    nextCursor != nil,
	}
}
