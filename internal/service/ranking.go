package service

import (
	"context"
	"log"
	"sort"

	"openlab/internal/cache"
	"openlab/internal/model"
	"openlab/internal/repository"
)

// RankingService computes the reputation leaderboard.
type RankingService struct {
	userRepo    repository.UserRepository
	leaderboard cache.LeaderboardCache
}

func NewRankingService(userRepo repository.UserRepository, leaderboard cache.LeaderboardCache) *RankingService {
	return &RankingService{
		userRepo:    userRepo,
		leaderboard: leaderboard,
	}
}

// Rank computes the reputation ranking over a fixed snapshot of
// engagement rows. The sort is stable: users with equal reputation keep
// their input order (registration time).
//
// Engagement on hidden projects still counts. Reputation measures what a
// user has earned, not what is currently on display.
func Rank(rows []repository.UserEngagement) []model.RankedUser {
	ranked := make([]model.RankedUser, len(rows))
	for i, row := range rows {
		ranked[i] = model.RankedUser{
			User:       row.UserSummary,
			Stats:      row.Stats,
			Reputation: row.Stats.Reputation(),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Reputation > ranked[j].Reputation
	})

	return ranked
}

// Leaderboard returns the ranked users, newest snapshot first trying the
// cache. A cache failure falls through to a fresh computation.
func (s *RankingService) Leaderboard(ctx context.Context) ([]model.RankedUser, error) {
	if s.leaderboard != nil {
		if ranked, found, err := s.leaderboard.Get(ctx); err == nil && found {
			return ranked, nil
		}
	}

	rows, err := s.userRepo.ListEngagement(ctx)
	if err != nil {
		return nil, err
	}

	ranked := Rank(rows)

	if s.leaderboard != nil {
		if err := s.leaderboard.Set(ctx, ranked); err != nil {
			log.Printf("[RankingService] Failed to cache leaderboard: %v", err)
		}
	}

	return ranked, nil
}
