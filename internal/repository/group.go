package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"openlab/internal/model"
)

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepository{db: db}
}

// Upsert creates the group, or refreshes name/description when the slug is
// already taken. The original creator, creation time and member set are
// preserved on conflict. The creator always ends up a member.
func (r *groupRepository) Upsert(ctx context.Context, g *model.Group) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, description = $3
		RETURNING created_by, created_at
	`
	err = tx.QueryRowxContext(ctx, query, g.ID, g.Name, g.Description, g.CreatedBy).
		Scan(&g.CreatedBy, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, g.ID, g.CreatedBy)
	if err != nil {
		return fmt.Errorf("add creator to members: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *groupRepository) GetAll(ctx context.Context) ([]model.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.created_by, g.created_at,
		       COUNT(m.user_id) AS member_count
		FROM groups g
		LEFT JOIN group_members m ON m.group_id = g.id
		GROUP BY g.id
		ORDER BY g.created_at DESC
	`
	var groups []model.Group
	err := r.db.SelectContext(ctx, &groups, query)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// GetByID hydrates the group with its member set and associated project
// ids.
func (r *groupRepository) GetByID(ctx context.Context, groupID string) (*model.Group, error) {
	query := `SELECT id, name, description, created_by, created_at FROM groups WHERE id = $1`

	var g model.Group
	err := r.db.GetContext(ctx, &g, query, groupID)
	if err == sql.ErrNoRows {
		return nil, model.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	err = r.db.SelectContext(ctx, &g.Members,
		`SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group members: %w", err)
	}
	g.MemberCount = len(g.Members)

	err = r.db.SelectContext(ctx, &g.AssociatedProjects,
		`SELECT project_id FROM group_projects WHERE group_id = $1 ORDER BY added_at ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group projects: %w", err)
	}

	return &g, nil
}

// Join adds the user to the member set. Idempotent: joining a group you
// are already in is a no-op.
func (r *groupRepository) Join(ctx context.Context, groupID string, userID int64) error {
	if err := r.requireGroup(ctx, groupID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID)
	if err != nil {
		return fmt.Errorf("join group: %w", err)
	}
	return nil
}

// Leave removes the user from the member set. Leaving a group you are not
// in is a no-op.
func (r *groupRepository) Leave(ctx context.Context, groupID string, userID int64) error {
	if err := r.requireGroup(ctx, groupID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("leave group: %w", err)
	}
	return nil
}

// AssociateProject links a project id to the group. No check that the
// project exists or is visible; associations may dangle after a project is
// deleted, mirroring the source data model.
func (r *groupRepository) AssociateProject(ctx context.Context, groupID string, projectID int64) error {
	if err := r.requireGroup(ctx, groupID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_projects (group_id, project_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, project_id) DO NOTHING
	`, groupID, projectID)
	if err != nil {
		return fmt.Errorf("associate project: %w", err)
	}
	return nil
}

func (r *groupRepository) RemoveProject(ctx context.Context, groupID string, projectID int64) error {
	if err := r.requireGroup(ctx, groupID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM group_projects WHERE group_id = $1 AND project_id = $2`, groupID, projectID)
	if err != nil {
		return fmt.Errorf("remove project: %w", err)
	}
	return nil
}

func (r *groupRepository) CreateDiscussion(ctx context.Context, d *model.Discussion) error {
	query := `
		INSERT INTO group_discussions (group_id, title, content, author_id, author_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, d.GroupID, d.Title, d.Content, d.AuthorID, d.AuthorName).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert discussion: %w", err)
	}
	return nil
}

// ListDiscussions returns a group's discussions newest first. The whole
// history is returned; discussions are unpaginated by design.
func (r *groupRepository) ListDiscussions(ctx context.Context, groupID string) ([]model.Discussion, error) {
	query := `
		SELECT id, group_id, title, content, author_id, author_name, created_at
		FROM group_discussions
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
	`
	var discussions []model.Discussion
	err := r.db.SelectContext(ctx, &discussions, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	return discussions, nil
}

func (r *groupRepository) CreateDiscussionComment(ctx context.Context, c *model.DiscussionComment) error {
	query := `
		INSERT INTO discussion_comments (discussion_id, content, author_id, author_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.DiscussionID, c.Content, c.AuthorID, c.AuthorName).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert discussion comment: %w", err)
	}
	return nil
}

func (r *groupRepository) ListDiscussionComments(ctx context.Context, discussionID int64) ([]model.DiscussionComment, error) {
	query := `
		SELECT id, discussion_id, content, author_id, author_name, created_at
		FROM discussion_comments
		WHERE discussion_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var comments []model.DiscussionComment
	err := r.db.SelectContext(ctx, &comments, query, discussionID)
	if err != nil {
		return nil, fmt.Errorf("list discussion comments: %w", err)
	}
	return comments, nil
}

func (r *groupRepository) DiscussionExists(ctx context.Context, groupID string, discussionID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM group_discussions WHERE id = $1 AND group_id = $2)`,
		discussionID, groupID)
	if err != nil {
		return false, fmt.Errorf("check discussion exists: %w", err)
	}
	return exists, nil
}

func (r *groupRepository) requireGroup(ctx context.Context, groupID string) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID)
	if err != nil {
		return fmt.Errorf("check group exists: %w", err)
	}
	if !exists {
		return model.ErrGroupNotFound
	}
	return nil
}
