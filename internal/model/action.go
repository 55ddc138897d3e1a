package model

import "time"

// Action types recorded in the activity log.
const (
	ActionCreateProject     = "create_project"
	ActionLikedProject      = "liked_project"
	ActionSavedProject      = "saved_project"
	ActionAddComment        = "add_comment"
	ActionFollowedUser      = "followed_user"
	ActionJoinedGroup       = "joined_group"
	ActionCreatedDiscussion = "created_discussion"
)

// UserAction is one entry of the append-only activity log. Entries are
// written asynchronously by the activity worker; the log is best-effort
// telemetry and never blocks or rolls back the mutation it records.
type UserAction struct {
	ID          string    `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	ActionType  string    `db:"action_type" json:"action_type"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"timestamp"`
}

// ActivityDefaultLimit bounds the reverse-chronological activity read on
// profile pages, the only bounded read in the data model.
const ActivityDefaultLimit = 10
