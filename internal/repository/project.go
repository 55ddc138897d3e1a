package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"openlab/internal/model"
)

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, title, description, category, author_id, author_name, visible,
       like_count, save_count, comment_count, created_at, updated_at`

// Create inserts a new project with server-assigned id and timestamps.
func (r *projectRepository) Create(ctx context.Context, p *model.Project) error {
	query := `
		INSERT INTO projects (title, description, category, author_id, author_name, visible)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, like_count, save_count, comment_count, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		p.Title, p.Description, p.Category, p.AuthorID, p.AuthorName, p.Visible)

	err := row.Scan(&p.ID, &p.LikeCount, &p.SaveCount, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of req. Only the author may update;
// a row owned by someone else is indistinguishable from a missing row at
// the SQL level, so ownership is resolved with a follow-up existence check.
func (r *projectRepository) Update(ctx context.Context, projectID, authorID int64, req *model.UpdateProjectRequest) (*model.Project, error) {
	query := `
		UPDATE projects SET
			title       = COALESCE($3, title),
			description = COALESCE($4, description),
			category    = COALESCE($5, category),
			visible     = COALESCE($6, visible),
			updated_at  = NOW()
		WHERE id = $1 AND author_id = $2
		RETURNING ` + projectColumns

	var p model.Project
	err := r.db.GetContext(ctx, &p, query, projectID, authorID,
		req.Title, req.Description, req.Category, req.Visible)
	if err == sql.ErrNoRows {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, projectID)
		if exists {
			return nil, model.ErrNotProjectOwner
		}
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &p, nil
}

// Delete hard-deletes a project. The likes/saves membership rows go with it
// (FK cascade) but comments are deliberately kept: the original data model
// leaves them orphaned and still addressable by id.
func (r *projectRepository) Delete(ctx context.Context, projectID, authorID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1 AND author_id = $2`, projectID, authorID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, projectID)
		if exists {
			return model.ErrNotProjectOwner
		}
		return model.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, projectID int64) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var p model.Project
	err := r.db.GetContext(ctx, &p, query, projectID)
	if err == sql.ErrNoRows {
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListByAuthor returns the author's projects, newest first. Hidden projects
// are included only for the author's own dashboard.
func (r *projectRepository) ListByAuthor(ctx context.Context, authorID int64, includeHidden bool) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE author_id = $1`
	if !includeHidden {
		query += ` AND visible = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	var projects []model.Project
	err := r.db.SelectContext(ctx, &projects, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("list projects by author: %w", err)
	}
	return projects, nil
}

// ListVisible returns all visible projects newest first, optionally
// filtered by a case-insensitive match on title, description or author name
// (the explore search surface).
func (r *projectRepository) ListVisible(ctx context.Context, search string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE visible = TRUE`
	args := []interface{}{}

	if search != "" {
		query += ` AND (title ILIKE $1 OR description ILIKE $1 OR author_name ILIKE $1)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	var projects []model.Project
	err := r.db.SelectContext(ctx, &projects, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list visible projects: %w", err)
	}
	return projects, nil
}

// ListVisibleByAuthors backs the follow feed: visible projects from the
// given authors, newest first.
func (r *projectRepository) ListVisibleByAuthors(ctx context.Context, authorIDs []int64) ([]model.Project, error) {
	if len(authorIDs) == 0 {
		return []model.Project{}, nil
	}

	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE visible = TRUE AND author_id = ANY($1)
		ORDER BY created_at DESC
	`
	var projects []model.Project
	err := r.db.SelectContext(ctx, &projects, query, pq.Array(authorIDs))
	if err != nil {
		return nil, fmt.Errorf("list projects by authors: %w", err)
	}
	return projects, nil
}

// ListSavedBy returns the visible projects a user has saved (favorites),
// most recently saved first.
func (r *projectRepository) ListSavedBy(ctx context.Context, userID int64) ([]model.Project, error) {
	query := `
		SELECT p.id, p.title, p.description, p.category, p.author_id, p.author_name, p.visible,
		       p.like_count, p.save_count, p.comment_count, p.created_at, p.updated_at
		FROM project_saves s
		JOIN projects p ON p.id = s.project_id
		WHERE s.user_id = $1 AND p.visible = TRUE
		ORDER BY s.created_at DESC
	`
	var projects []model.Project
	err := r.db.SelectContext(ctx, &projects, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved projects: %w", err)
	}
	return projects, nil
}

// Like inserts the membership row and increments the counter in one
// transaction, so like_count == |likers| holds whatever happens. A
// duplicate like hits the primary key and maps to ErrAlreadyLiked with no
// state change.
func (r *projectRepository) Like(ctx context.Context, projectID, userID int64) error {
	return r.engage(ctx, projectID, userID, "project_likes", "like_count", model.ErrAlreadyLiked)
}

// Unlike is the mirror of Like: delete + decrement in one transaction,
// ErrNotLiked when the membership row is absent.
func (r *projectRepository) Unlike(ctx context.Context, projectID, userID int64) error {
	return r.disengage(ctx, projectID, userID, "project_likes", "like_count", model.ErrNotLiked)
}

// Save and Unsave follow the identical pattern against project_saves.
func (r *projectRepository) Save(ctx context.Context, projectID, userID int64) error {
	return r.engage(ctx, projectID, userID, "project_saves", "save_count", model.ErrAlreadySaved)
}

func (r *projectRepository) Unsave(ctx context.Context, projectID, userID int64) error {
	return r.disengage(ctx, projectID, userID, "project_saves", "save_count", model.ErrNotSaved)
}

func (r *projectRepository) engage(ctx context.Context, projectID, userID int64, table, counter string, dupErr error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO ` + table + ` (project_id, user_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, query, projectID, userID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return dupErr
			case "23503": // foreign_key_violation: project is gone
				return model.ErrProjectNotFound
			}
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}

	update := `UPDATE projects SET ` + counter + ` = ` + counter + ` + 1, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, projectID); err != nil {
		return fmt.Errorf("increment %s: %w", counter, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *projectRepository) disengage(ctx context.Context, projectID, userID int64, table, counter string, missingErr error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `DELETE FROM ` + table + ` WHERE project_id = $1 AND user_id = $2`
	result, err := tx.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return missingErr
	}

	update := `UPDATE projects SET ` + counter + ` = ` + counter + ` - 1, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, projectID); err != nil {
		return fmt.Errorf("decrement %s: %w", counter, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *projectRepository) GetLikers(ctx context.Context, projectIDs []int64) (map[int64][]int64, error) {
	return r.memberSets(ctx, "project_likes", projectIDs)
}

func (r *projectRepository) GetSavers(ctx context.Context, projectIDs []int64) (map[int64][]int64, error) {
	return r.memberSets(ctx, "project_saves", projectIDs)
}

// memberSets hydrates the membership sets for a batch of projects in one
// query (no N+1).
func (r *projectRepository) memberSets(ctx context.Context, table string, projectIDs []int64) (map[int64][]int64, error) {
	if len(projectIDs) == 0 {
		return map[int64][]int64{}, nil
	}

	query := `
		SELECT project_id, user_id FROM ` + table + `
		WHERE project_id = ANY($1)
		ORDER BY created_at ASC
	`
	type row struct {
		ProjectID int64 `db:"project_id"`
		UserID    int64 `db:"user_id"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(projectIDs))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}

	result := make(map[int64][]int64)
	for _, rw := range rows {
		result[rw.ProjectID] = append(result[rw.ProjectID], rw.UserID)
	}
	return result, nil
}

func (r *projectRepository) UpdateAuthorName(ctx context.Context, authorID int64, authorName string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET author_name = $1 WHERE author_id = $2`, authorName, authorID)
	if err != nil {
		return fmt.Errorf("update author name: %w", err)
	}
	return nil
}
