package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"openlab/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and increments the project's comment counter
// in one transaction.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO project_comments (project_id, author_id, author_name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRowxContext(ctx, query, c.ProjectID, c.AuthorID, c.AuthorName, c.Content).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	// project_comments has no FK to projects (comments outlive deletion),
	// so a vanished project surfaces here as zero updated rows and the
	// whole transaction rolls back.
	result, err := tx.ExecContext(ctx,
		`UPDATE projects SET comment_count = comment_count + 1 WHERE id = $1`, c.ProjectID)
	if err != nil {
		return fmt.Errorf("increment comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProjectNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByProject returns a project's comments oldest first, the display
// order. Works for orphaned comments of deleted projects too, since there
// is no join back to projects.
func (r *commentRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Comment, error) {
	query := `
		SELECT id, project_id, author_id, author_name, content, created_at
		FROM project_comments
		WHERE project_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
