package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"openlab/internal/model"
	"openlab/internal/queue"
)

// actionNamespace seeds deterministic action IDs derived from stream
// message IDs, so a redelivered message maps to the same row.
var actionNamespace = uuid.MustParse("9f2c1b4e-7a53-4d86-b1f0-3c8a5e2d6401")

// ActionRecorder defines the interface for persisting activity entries.
// It abstracts the repository layer so workers don't depend on DB directly.
type ActionRecorder interface {
	Create(ctx context.Context, action *model.UserAction) error
}

// Handler processes activity events from the queue and records them.
type Handler struct {
	actions ActionRecorder
}

// NewHandler creates a new event handler.
func NewHandler(actions ActionRecorder) *Handler {
	return &Handler{actions: actions}
}

// HandleEvent records an activity event as a user action row.
// The message ID keys the row so redelivery after a crash cannot
// duplicate an entry.
func (h *Handler) HandleEvent(ctx context.Context, messageID string, event queue.ActivityEvent) error {
	startTime := time.Now()

	description, err := describe(event)
	if err != nil {
		log.Printf("[Worker] HandleEvent SKIPPED: msgID=%s err=%v", messageID, err)
		// Malformed events are acked by the caller, not retried
		return nil
	}

	action := &model.UserAction{
		ID:          uuid.NewSHA1(actionNamespace, []byte(messageID)).String(),
		UserID:      event.UserID,
		ActionType:  event.Type,
		Description: description,
		CreatedAt:   time.Unix(event.Timestamp, 0).UTC(),
	}

	if err := h.actions.Create(ctx, action); err != nil {
		log.Printf("[Worker] HandleEvent FAILED: msgID=%s type=%s duration=%v err=%v",
			messageID, event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: msgID=%s type=%s user=%d duration=%v",
		messageID, event.Type, event.UserID, time.Since(startTime))
	return nil
}

// describe builds the human-readable description shown on activity feeds.
func describe(event queue.ActivityEvent) (string, error) {
	switch event.Type {
	case model.ActionCreateProject:
		return fmt.Sprintf("Published project %q", event.ProjectTitle), nil
	case model.ActionLikedProject:
		return fmt.Sprintf("Liked project %q", event.ProjectTitle), nil
	case model.ActionSavedProject:
		return fmt.Sprintf("Saved project %q", event.ProjectTitle), nil
	case model.ActionAddComment:
		return fmt.Sprintf("Commented on project %q", event.ProjectTitle), nil
	case model.ActionFollowedUser:
		return fmt.Sprintf("Started following %s", event.TargetUserName), nil
	case model.ActionJoinedGroup:
		return fmt.Sprintf("Joined group %q", event.GroupName), nil
	case model.ActionCreatedDiscussion:
		return fmt.Sprintf("Opened discussion %q in group %q", event.DiscussionTitle, event.GroupName), nil
	default:
		return "", fmt.Errorf("unknown event type: %s", event.Type)
	}
}
