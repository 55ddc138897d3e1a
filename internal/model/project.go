package model

import (
	"errors"
	"time"
)

// Project represents a published project with its engagement counters.
// LikeCount and SaveCount are denormalized from the membership tables and
// updated in the same transaction as the membership row, so
// like_count == |likers| and save_count == |savers| always hold.
type Project struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	Category     string    `db:"category" json:"category"`
	AuthorID     int64     `db:"author_id" json:"author_id"`
	AuthorName   string    `db:"author_name" json:"author_name"`
	Visible      bool      `db:"visible" json:"visible"`
	LikeCount    int       `db:"like_count" json:"likes"`
	SaveCount    int       `db:"save_count" json:"saves"`
	CommentCount int       `db:"comment_count" json:"comments_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Joined fields (not columns on projects)
	LikedBy []int64 `json:"liked_by"`
	SavedBy []int64 `json:"saved_by"`
	IsLiked bool    `json:"is_liked"`
	IsSaved bool    `json:"is_saved"`
}

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Visible     *bool  `json:"visible"` // defaults to true
}

// UpdateProjectRequest carries partial project updates. Nil means unchanged.
type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Visible     *bool   `json:"visible"`
}

// Categories a project can be published under.
var ProjectCategories = []string{
	"web",
	"mobile",
	"desktop",
	"ai",
	"iot",
	"games",
	"robotics",
	"data-science",
	"cybersecurity",
	"hardware",
	"other",
}

// IsValidCategory reports whether the category is one of ProjectCategories.
func IsValidCategory(category string) bool {
	for _, c := range ProjectCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Project constraints
const (
	MaxProjectTitleLength       = 120
	MaxProjectDescriptionLength = 5000
)

// Project errors
var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrNotProjectOwner     = errors.New("not the owner of this project")
	ErrTitleRequired       = errors.New("project title is required")
	ErrTitleTooLong        = errors.New("project title too long")
	ErrDescriptionTooLong  = errors.New("project description too long")
	ErrInvalidCategory     = errors.New("invalid project category")
	ErrAlreadyLiked        = errors.New("project already liked")
	ErrNotLiked            = errors.New("project not liked")
	ErrAlreadySaved        = errors.New("project already saved")
	ErrNotSaved            = errors.New("project not saved")
)
