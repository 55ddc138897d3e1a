package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"openlab/internal/httputil"
	"openlab/internal/model"
	"openlab/internal/service"
	"openlab/internal/transport/http/middleware"
)

// GroupHandler groups community and discussion endpoints.
type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// Create creates a group, or refreshes an existing one with the same slug
// POST /groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	group, err := h.groupService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrGroupNameRequired):
			httputil.WriteBadRequest(w, "Group name is required")
		case errors.Is(err, model.ErrGroupNameTooLong):
			httputil.WriteBadRequest(w, "Group name too long")
		default:
			httputil.WriteInternalError(w, "Failed to create group")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, group)
}

// List returns all groups
// GET /groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.GetAll(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list groups")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
	})
}

// GetByID returns a single group with its members and projects
// GET /groups/{groupID}
func (h *GroupHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	group, err := h.groupService.GetByID(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			httputil.WriteNotFound(w, "Group not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get group")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, group)
}

// Join adds the authenticated user to the group. Joining twice is a no-op.
// POST /groups/{groupID}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	groupID := chi.URLParam(r, "groupID")

	if err := h.groupService.Join(r.Context(), groupID, userID); err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			httputil.WriteNotFound(w, "Group not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to join group")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Joined group",
	})
}

// Leave removes the authenticated user from the group. Leaving a group
// the user is not in is a no-op.
// POST /groups/{groupID}/leave
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	groupID := chi.URLParam(r, "groupID")

	if err := h.groupService.Leave(r.Context(), groupID, userID); err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			httputil.WriteNotFound(w, "Group not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to leave group")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Left group",
	})
}

// AssociateProject links a project to the group. The project id is taken
// as-is; associations may outlive the project.
// POST /groups/{groupID}/projects
func (h *GroupHandler) AssociateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	groupID := chi.URLParam(r, "groupID")

	var req model.AssociateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.ProjectID <= 0 {
		httputil.WriteBadRequest(w, "project_id is required")
		return
	}

	if err := h.groupService.AssociateProject(r.Context(), groupID, userID, req.ProjectID); err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			httputil.WriteNotFound(w, "Group not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to associate project")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Project associated",
	})
}

// RemoveProject unlinks a project from the group. Creator only.
// DELETE /groups/{groupID}/projects/{projectID}
func (h *GroupHandler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	projectID, err := parseIDParam(r, "projectID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid project ID")
		return
	}

	if err := h.groupService.RemoveProject(r.Context(), groupID, userID, projectID); err != nil {
		switch {
		case errors.Is(err, model.ErrGroupNotFound):
			httputil.WriteNotFound(w, "Group not found")
		case errors.Is(err, model.ErrNotGroupCreator):
			httputil.WriteForbidden(w, "Only the group creator can remove projects")
		default:
			httputil.WriteInternalError(w, "Failed to remove project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Project removed from group",
	})
}

// CreateDiscussion opens a discussion thread in the group
// POST /groups/{groupID}/discussions
func (h *GroupHandler) CreateDiscussion(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	groupID := chi.URLParam(r, "groupID")

	var req model.CreateDiscussionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	discussion, err := h.groupService.CreateDiscussion(r.Context(), groupID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Discussion title is required")
		case errors.Is(err, model.ErrGroupNotFound):
			httputil.WriteNotFound(w, "Group not found")
		default:
			httputil.WriteInternalError(w, "Failed to create discussion")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, discussion)
}

// ListDiscussions returns a group's discussions, newest first
// GET /groups/{groupID}/discussions
func (h *GroupHandler) ListDiscussions(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	discussions, err := h.groupService.ListDiscussions(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			httputil.WriteNotFound(w, "Group not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to list discussions")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"discussions": discussions,
	})
}

// CreateDiscussionComment replies inside a discussion
// POST /groups/{groupID}/discussions/{discussionID}/comments
func (h *GroupHandler) CreateDiscussionComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	discussionID, err := parseIDParam(r, "discussionID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid discussion ID")
		return
	}

	var req model.CreateDiscussionCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.groupService.CreateDiscussionComment(r.Context(), groupID, discussionID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrCommentTooLong):
			httputil.WriteBadRequest(w, "Comment content too long")
		case errors.Is(err, model.ErrDiscussionNotFound):
			httputil.WriteNotFound(w, "Discussion not found")
		default:
			httputil.WriteInternalError(w, "Failed to create reply")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// ListDiscussionComments returns a discussion's replies, oldest first
// GET /groups/{groupID}/discussions/{discussionID}/comments
func (h *GroupHandler) ListDiscussionComments(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	discussionID, err := parseIDParam(r, "discussionID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid discussion ID")
		return
	}

	comments, err := h.groupService.ListDiscussionComments(r.Context(), groupID, discussionID)
	if err != nil {
		if errors.Is(err, model.ErrDiscussionNotFound) {
			httputil.WriteNotFound(w, "Discussion not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to list replies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
	})
}
