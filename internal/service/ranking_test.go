package service

import (
	"context"
	"errors"
	"testing"

	"openlab/internal/model"
	"openlab/internal/repository"
)

func engagementRow(id int64, likes, saves, comments, followers int) repository.UserEngagement {
	return repository.UserEngagement{
		UserSummary: model.UserSummary{ID: id},
		Stats: model.EngagementStats{
			Likes:     likes,
			Saves:     saves,
			Comments:  comments,
			Followers: followers,
		},
	}
}

// A user with 2 projects (likes 3+7, saves 1+2, comments 0+4) and 10
// followers scores 10*20 + 4*1 + 3*3 + 10*10 = 313.
func TestReputationWeights(t *testing.T) {
	stats := model.EngagementStats{
		Likes:     3 + 7,
		Saves:     1 + 2,
		Comments:  0 + 4,
		Followers: 10,
	}

	if got := stats.Reputation(); got != 313 {
		t.Errorf("reputation = %d, want 313", got)
	}
}

func TestReputationMonotonicPerUnitWeights(t *testing.T) {
	base := model.EngagementStats{Likes: 2, Saves: 2, Comments: 2, Followers: 2}

	cases := []struct {
		name   string
		bumped model.EngagementStats
		weight int
	}{
		{"like", model.EngagementStats{Likes: 3, Saves: 2, Comments: 2, Followers: 2}, model.WeightLike},
		{"save", model.EngagementStats{Likes: 2, Saves: 3, Comments: 2, Followers: 2}, model.WeightSave},
		{"comment", model.EngagementStats{Likes: 2, Saves: 2, Comments: 3, Followers: 2}, model.WeightComment},
		{"follower", model.EngagementStats{Likes: 2, Saves: 2, Comments: 2, Followers: 3}, model.WeightFollower},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delta := tc.bumped.Reputation() - base.Reputation()
			if delta != tc.weight {
				t.Errorf("one extra %s changed reputation by %d, want %d", tc.name, delta, tc.weight)
			}
		})
	}
}

func TestRankSortsDescending(t *testing.T) {
	rows := []repository.UserEngagement{
		engagementRow(1, 0, 0, 0, 1),  // 20
		engagementRow(2, 10, 0, 0, 0), // 100
		engagementRow(3, 0, 1, 0, 0),  // 3
	}

	ranked := Rank(rows)

	wantOrder := []int64{2, 1, 3}
	for i, want := range wantOrder {
		if ranked[i].User.ID != want {
			t.Errorf("rank %d: user = %d, want %d", i, ranked[i].User.ID, want)
		}
	}
	if ranked[0].Reputation != 100 || ranked[1].Reputation != 20 || ranked[2].Reputation != 3 {
		t.Errorf("unexpected reputations: %d %d %d",
			ranked[0].Reputation, ranked[1].Reputation, ranked[2].Reputation)
	}
}

// Equal-reputation users must retain their input order.
func TestRankStableOnTies(t *testing.T) {
	rows := []repository.UserEngagement{
		engagementRow(1, 1, 0, 0, 0), // 10
		engagementRow(2, 0, 0, 10, 0), // 10
		engagementRow(3, 0, 0, 0, 0),  // 0
		engagementRow(4, 0, 0, 0, 0),  // 0
	}

	ranked := Rank(rows)

	wantOrder := []int64{1, 2, 3, 4}
	for i, want := range wantOrder {
		if ranked[i].User.ID != want {
			t.Errorf("rank %d: user = %d, want %d (ties must keep input order)", i, ranked[i].User.ID, want)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	ranked := Rank(nil)
	if len(ranked) != 0 {
		t.Errorf("expected empty ranking, got %d rows", len(ranked))
	}
}

func TestLeaderboardCacheHit(t *testing.T) {
	cached := []model.RankedUser{{User: model.UserSummary{ID: 9}, Reputation: 42}}
	lb := &mockLeaderboardCache{snapshot: cached}
	repo := &mockUserRepository{
		listEngagementFn: func(ctx context.Context) ([]repository.UserEngagement, error) {
			t.Fatal("cache hit should not touch the database")
			return nil, nil
		},
	}
	svc := NewRankingService(repo, lb)

	ranked, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(ranked) != 1 || ranked[0].User.ID != 9 {
		t.Errorf("expected cached snapshot, got %+v", ranked)
	}
}

func TestLeaderboardCacheMissComputesAndStores(t *testing.T) {
	lb := &mockLeaderboardCache{}
	repo := &mockUserRepository{
		listEngagementFn: func(ctx context.Context) ([]repository.UserEngagement, error) {
			return []repository.UserEngagement{
				engagementRow(1, 0, 0, 0, 0),
				engagementRow(2, 1, 0, 0, 0),
			}, nil
		},
	}
	svc := NewRankingService(repo, lb)

	ranked, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(ranked) != 2 || ranked[0].User.ID != 2 {
		t.Errorf("unexpected ranking: %+v", ranked)
	}
	if lb.setCalls != 1 {
		t.Errorf("expected 1 cache store, got %d", lb.setCalls)
	}
}

func TestLeaderboardCacheFailureFallsThrough(t *testing.T) {
	lb := &mockLeaderboardCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	repo := &mockUserRepository{
		listEngagementFn: func(ctx context.Context) ([]repository.UserEngagement, error) {
			return []repository.UserEngagement{engagementRow(1, 1, 1, 1, 1)}, nil
		},
	}
	svc := NewRankingService(repo, lb)

	ranked, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not fail the request: %v", err)
	}
	if len(ranked) != 1 {
		t.Errorf("expected 1 ranked user, got %d", len(ranked))
	}
}
