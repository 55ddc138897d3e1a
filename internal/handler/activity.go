package handler

import (
	"net/http"
	"strconv"

	"openlab/internal/httputil"
	"openlab/internal/service"
)

// ActivityHandler serves users' recent activity feeds.
type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Recent returns a user's most recent recorded actions, newest first
// GET /users/{userID}/activity?limit=10
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
	}

	actions, err := h.activityService.Recent(r.Context(), userID, limit)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list activity")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"actions": actions,
	})
}
