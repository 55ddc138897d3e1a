package service

import (
	"context"
	"log"

	"openlab/internal/model"
	"openlab/internal/repository"
)

// FeedService builds the personalized feed: visible projects authored by
// the users one follows, newest first.
type FeedService struct {
	projectRepo repository.ProjectRepository
	followRepo  repository.FollowRepository
}

func NewFeedService(
	projectRepo repository.ProjectRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		projectRepo: projectRepo,
		followRepo:  followRepo,
	}
}

// GetFeed returns the viewer's feed. An empty following list yields an
// empty feed, not an error.
func (s *FeedService) GetFeed(ctx context.Context, userID int64) ([]model.Project, error) {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(followeeIDs) == 0 {
		return []model.Project{}, nil
	}

	projects, err := s.projectRepo.ListVisibleByAuthors(ctx, followeeIDs)
	if err != nil {
		return nil, err
	}

	s.hydrate(ctx, projects, userID)
	return projects, nil
}

// hydrate fills membership sets and viewer flags, degrading to empty sets
// on cache-path failures.
func (s *FeedService) hydrate(ctx context.Context, projects []model.Project, viewerID int64) {
	if len(projects) == 0 {
		return
	}

	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	likers, err := s.projectRepo.GetLikers(ctx, ids)
	if err != nil {
		log.Printf("[FeedService] Failed to hydrate likers: %v", err)
		likers = map[int64][]int64{}
	}
	savers, err := s.projectRepo.GetSavers(ctx, ids)
	if err != nil {
		log.Printf("[FeedService] Failed to hydrate savers: %v", err)
		savers = map[int64][]int64{}
	}

	for i := range projects {
		p := &projects[i]
		p.LikedBy = likers[p.ID]
		p.SavedBy = savers[p.ID]
		p.IsLiked = containsID(p.LikedBy, viewerID)
		p.IsSaved = containsID(p.SavedBy, viewerID)
	}
}
