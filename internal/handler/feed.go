package handler

import (
	"net/http"

	"openlab/internal/httputil"
	"openlab/internal/service"
	"openlab/internal/transport/http/middleware"
)

// FeedHandler serves the followee project feed.
type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed returns visible projects from the users the viewer follows
// GET /feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	projects, err := h.feedService.GetFeed(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to load feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}
