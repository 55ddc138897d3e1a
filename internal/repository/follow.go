package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"openlab/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the edge and bumps both denormalized counters in one
// transaction. The two sides of the graph can therefore never desync: either
// all three writes land or none do.
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrAlreadyFollowing
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET follower_count = follower_count + 1 WHERE id = $1`, followeeID); err != nil {
		return fmt.Errorf("failed to increment follower count: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET following_count = following_count + 1 WHERE id = $1`, followerID); err != nil {
		return fmt.Errorf("failed to increment following count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Unfollow removes the edge and decrements both counters in one transaction.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET follower_count = follower_count - 1 WHERE id = $1`, followeeID); err != nil {
		return fmt.Errorf("failed to decrement follower count: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET following_count = following_count - 1 WHERE id = $1`, followerID); err != nil {
		return fmt.Errorf("failed to decrement following count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowers retrieves users who follow the specified user with
// cursor-based pagination on the follow's created_at. Fetches limit+1 rows
// to decide whether a next cursor exists.
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	return r.listEdge(ctx, userID, cursor, limit, true)
}

// GetFollowing retrieves users that the specified user follows. See
// GetFollowers for the cursor scheme.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	return r.listEdge(ctx, userID, cursor, limit, false)
}

func (r *followRepository) listEdge(ctx context.Context, userID int64, cursor *time.Time, limit int, followers bool) ([]model.UserSummary, *time.Time, error) {
	joinCol, whereCol := "f.follower_id", "f.followee_id"
	if !followers {
		joinCol, whereCol = "f.followee_id", "f.follower_id"
	}

	query := `
		SELECT u.id, u.email, u.display_name, u.photo_url, f.created_at
		FROM follows f
		JOIN users u ON u.id = ` + joinCol + `
		WHERE ` + whereCol + ` = $1`
	args := []interface{}{userID}

	if cursor != nil {
		query += ` AND f.created_at < $2
		ORDER BY f.created_at DESC
		LIMIT $3`
		args = append(args, cursor, limit+1)
	} else {
		query += `
		ORDER BY f.created_at DESC
		LIMIT $2`
		args = append(args, limit+1)
	}

	type userWithTime struct {
		model.UserSummary
		CreatedAt time.Time `db:"created_at"`
	}

	var results []userWithTime
	err := r.db.SelectContext(ctx, &results, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list follow edge: %w", err)
	}

	var nextCursor *time.Time
	if len(results) > limit {
		results = results[:limit]
		nextCursor = &results[len(results)-1].CreatedAt
	}

	var users []model.UserSummary
	for _, result := range results {
		users = append(users, result.UserSummary)
	}

	return users, nextCursor, nil
}

func (r *followRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if len(followeeIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT followee_id FROM follows WHERE follower_id = $1 AND followee_id = ANY($2)`
	var followedIDs []int64
	err := r.db.SelectContext(ctx, &followedIDs, query, followerID, pq.Array(followeeIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range followeeIDs {
		result[id] = false
	}
	for _, id := range followedIDs {
		result[id] = true
	}

	return result, nil
}

func (r *followRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT followee_id FROM follows WHERE follower_id = $1`
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followee ids: %w", err)
	}
	return ids, nil
}
