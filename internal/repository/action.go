package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"openlab/internal/model"
)

type actionRepository struct {
	db *sqlx.DB
}

func NewActionRepository(db *sqlx.DB) ActionRepository {
	return &actionRepository{db: db}
}

// Create appends one activity-log entry. The id is assigned by the caller
// (the worker derives it from the event) so redelivered stream messages
// stay idempotent: a duplicate insert hits the primary key and is dropped.
func (r *actionRepository) Create(ctx context.Context, a *model.UserAction) error {
	query := `
		INSERT INTO user_actions (id, user_id, action_type, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.UserID, a.ActionType, a.Description, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user action: %w", err)
	}
	return nil
}

// Recent returns the newest activity entries for a user, newest first.
func (r *actionRepository) Recent(ctx context.Context, userID int64, limit int) ([]model.UserAction, error) {
	if limit <= 0 {
		limit = model.ActivityDefaultLimit
	}

	query := `
		SELECT id, user_id, action_type, description, created_at
		FROM user_actions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var actions []model.UserAction
	err := r.db.SelectContext(ctx, &actions, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent actions: %w", err)
	}
	return actions, nil
}
