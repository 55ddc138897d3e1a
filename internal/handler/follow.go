package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"openlab/internal/httputil"
	"openlab/internal/model"
	"openlab/internal/service"
	"openlab/internal/transport/http/middleware"
)

// FollowHandler groups follow-graph HTTP endpoints.
type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow makes the authenticated user follow the target user
// POST /users/{userID}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	followeeID, err := parseIDParam(r, "userID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, followeeID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot follow yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteConflict(w, "Already following this user")
		default:
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Followed successfully",
	})
}

// Unfollow removes the follow edge
// DELETE /users/{userID}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	followeeID, err := parseIDParam(r, "userID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followeeID); err != nil {
		if errors.Is(err, model.ErrNotFollowing) {
			httputil.WriteNotFound(w, "Not following this user")
			return
		}
		httputil.WriteInternalError(w, "Failed to unfollow user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Unfollowed successfully",
	})
}

// GetFollowers lists users who follow the target user
// GET /users/{userID}/followers?cursor=...&limit=20
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.listFollowEdges(w, r, h.followService.GetFollowers)
}

// GetFollowing lists users the target user follows
// GET /users/{userID}/following?cursor=...&limit=20
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.listFollowEdges(w, r, h.followService.GetFollowing)
}

type followListFn func(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error)

func (h *FollowHandler) listFollowEdges(w http.ResponseWriter, r *http.Request, list followListFn) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	var cursor *time.Time
	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		parsed, err := time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid cursor format")
			return
		}
		cursor = &parsed
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			httputil.WriteBadRequest(w, "Limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	resp, err := list(r.Context(), userID, cursor, limit, viewerIDFromContext(r))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to list follows")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
