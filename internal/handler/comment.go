package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"openlab/internal/httputil"
	"openlab/internal/model"
	"openlab/internal/service"
	"openlab/internal/transport/http/middleware"
)

// CommentHandler groups project comment endpoints.
type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create adds a comment on a project
// POST /projects/{projectID}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	projectID, err := parseIDParam(r, "projectID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid project ID")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), projectID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrCommentTooLong):
			httputil.WriteBadRequest(w, "Comment content too long")
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		default:
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// ListByProject returns a project's comments, oldest first. Comments
// outlive their project, so this never 404s on a deleted project.
// GET /projects/{projectID}/comments
func (h *CommentHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "projectID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid project ID")
		return
	}

	comments, err := h.commentService.ListByProject(r.Context(), projectID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
	})
}
