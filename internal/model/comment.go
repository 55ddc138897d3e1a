package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a project. Comments are append-only:
// there is no edit or delete operation. When a project is hard-deleted its
// comments are intentionally left in place (no cascade).
type Comment struct {
	ID         int64     `db:"id" json:"id"`
	ProjectID  int64     `db:"project_id" json:"project_id"`
	AuthorID   int64     `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CreateCommentRequest is the request body for commenting on a project.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

const MaxCommentLength = 2000

var (
	ErrCommentContentRequired = errors.New("comment content is required")
	ErrCommentTooLong         = errors.New("comment content too long")
)
