package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"openlab/internal/model"
)

// Stream names
const (
	StreamActivity = "stream:activity"
)

// Consumer group name for activity workers
const (
	ConsumerGroupActivity = "activity_workers"
)

// ActivityEvent represents an event published to the activity stream.
// All activity events share this structure; only the fields relevant
// to the action type are populated.
type ActivityEvent struct {
	Type      string `json:"type"`      // one of the model.Action* constants
	Timestamp int64  `json:"timestamp"` // Unix timestamp when the action occurred
	UserID    int64  `json:"user_id"`   // user who performed the action

	// Project actions (create, like, save, comment)
	ProjectID    int64  `json:"project_id,omitempty"`
	ProjectTitle string `json:"project_title,omitempty"`

	// Follow action
	TargetUserID   int64  `json:"target_user_id,omitempty"`
	TargetUserName string `json:"target_user_name,omitempty"`

	// Group actions (join, discussion)
	GroupID         string `json:"group_id,omitempty"`
	GroupName       string `json:"group_name,omitempty"`
	DiscussionTitle string `json:"discussion_title,omitempty"`
}

// NewProjectEvent creates an event for a project-scoped action
// (create, like, save, comment).
func NewProjectEvent(actionType string, userID, projectID int64, projectTitle string) ActivityEvent {
	return ActivityEvent{
		Type:         actionType,
		Timestamp:    time.Now().Unix(),
		UserID:       userID,
		ProjectID:    projectID,
		ProjectTitle: projectTitle,
	}
}

// NewFollowedUserEvent creates an event for when a user follows another.
func NewFollowedUserEvent(userID, targetID int64, targetName string) ActivityEvent {
	return ActivityEvent{
		Type:           model.ActionFollowedUser,
		Timestamp:      time.Now().Unix(),
		UserID:         userID,
		TargetUserID:   targetID,
		TargetUserName: targetName,
	}
}

// NewJoinedGroupEvent creates an event for when a user joins a group.
func NewJoinedGroupEvent(userID int64, groupID, groupName string) ActivityEvent {
	return ActivityEvent{
		Type:      model.ActionJoinedGroup,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		GroupID:   groupID,
		GroupName: groupName,
	}
}

// NewCreatedDiscussionEvent creates an event for when a user opens a discussion.
func NewCreatedDiscussionEvent(userID int64, groupID, groupName, title string) ActivityEvent {
	return ActivityEvent{
		Type:            model.ActionCreatedDiscussion,
		Timestamp:       time.Now().Unix(),
		UserID:          userID,
		GroupID:         groupID,
		GroupName:       groupName,
		DiscussionTitle: title,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
