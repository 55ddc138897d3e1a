package model

import (
	"errors"
	"time"
)

// Group represents a topical group. The id is a slug derived from the name
// at creation time; creating a group whose slug already exists updates the
// existing document (upsert) rather than failing.
type Group struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Joined fields
	Members            []int64 `json:"members"`
	AssociatedProjects []int64 `json:"associated_projects"`
	MemberCount        int     `db:"member_count" json:"member_count"`
}

// Discussion is a threaded topic inside a group. Append-only.
type Discussion struct {
	ID         int64     `db:"id" json:"id"`
	GroupID    string    `db:"group_id" json:"group_id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	AuthorID   int64     `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DiscussionComment is a reply inside a discussion. Append-only.
type DiscussionComment struct {
	ID           int64     `db:"id" json:"id"`
	DiscussionID int64     `db:"discussion_id" json:"discussion_id"`
	Content      string    `db:"content" json:"content"`
	AuthorID     int64     `db:"author_id" json:"author_id"`
	AuthorName   string    `db:"author_name" json:"author_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateDiscussionRequest is the request body for opening a discussion.
type CreateDiscussionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateDiscussionCommentRequest is the request body for replying.
type CreateDiscussionCommentRequest struct {
	Content string `json:"content"`
}

// AssociateProjectRequest links a project to a group.
type AssociateProjectRequest struct {
	ProjectID int64 `json:"project_id"`
}

const MaxGroupNameLength = 80

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupNameRequired  = errors.New("group name is required")
	ErrGroupNameTooLong   = errors.New("group name too long")
	ErrNotGroupCreator    = errors.New("not the creator of this group")
	ErrDiscussionNotFound = errors.New("discussion not found")
)
