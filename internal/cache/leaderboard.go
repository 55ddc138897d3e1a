package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"openlab/internal/model"
)

const (
	// LeaderboardKey is the Redis key holding the ranked user snapshot
	LeaderboardKey = "ranking:leaderboard"

	// LeaderboardTTL bounds how stale a served ranking can be
	LeaderboardTTL = 5 * time.Minute
)

// LeaderboardCache defines the interface for the ranking cache.
// Using an interface enables testing with mocks and potential future backends.
type LeaderboardCache interface {
	// Get retrieves the cached ranking snapshot.
	// Returns (nil, false, nil) on a cache miss.
	Get(ctx context.Context) ([]model.RankedUser, bool, error)

	// Set stores a ranking snapshot with the leaderboard TTL.
	Set(ctx context.Context, ranked []model.RankedUser) error

	// Invalidate drops the cached snapshot so the next read recomputes.
	Invalidate(ctx context.Context) error
}

// RedisLeaderboardCache implements LeaderboardCache using a JSON snapshot.
// A sorted set cannot preserve tie order between equal scores, so the
// snapshot keeps the ranking exactly as computed.
type RedisLeaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new LeaderboardCache backed by Redis.
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &RedisLeaderboardCache{client: client}
}

// Get retrieves the cached ranking snapshot.
func (c *RedisLeaderboardCache) Get(ctx context.Context) ([]model.RankedUser, bool, error) {
	startTime := time.Now()

	raw, err := c.client.Get(ctx, LeaderboardKey).Bytes()
	if err == redis.Nil {
		log.Printf("[LeaderboardCache] Get: MISS")
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[LeaderboardCache] Get FAILED: err=%v", err)
		return nil, false, fmt.Errorf("get leaderboard: %w", err)
	}

	var ranked []model.RankedUser
	if err := json.Unmarshal(raw, &ranked); err != nil {
		log.Printf("[LeaderboardCache] Get decode error: err=%v", err)
		return nil, false, fmt.Errorf("decode leaderboard: %w", err)
	}

	log.Printf("[LeaderboardCache] Get OK: users=%d duration=%v", len(ranked), time.Since(startTime))
	return ranked, true, nil
}

// Set stores a ranking snapshot with the leaderboard TTL.
func (c *RedisLeaderboardCache) Set(ctx context.Context, ranked []model.RankedUser) error {
	startTime := time.Now()

	raw, err := json.Marshal(ranked)
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}

	if err := c.client.Set(ctx, LeaderboardKey, raw, LeaderboardTTL).Err(); err != nil {
		log.Printf("[LeaderboardCache] Set FAILED: err=%v", err)
		return fmt.Errorf("set leaderboard: %w", err)
	}

	log.Printf("[LeaderboardCache] Set OK: users=%d duration=%v", len(ranked), time.Since(startTime))
	return nil
}

// Invalidate drops the cached snapshot.
func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, LeaderboardKey).Err(); err != nil {
		log.Printf("[LeaderboardCache] Invalidate FAILED: err=%v", err)
		return fmt.Errorf("invalidate leaderboard: %w", err)
	}
	log.Printf("[LeaderboardCache] Invalidate OK")
	return nil
}
