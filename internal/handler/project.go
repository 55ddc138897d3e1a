package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"openlab/internal/httputil"
	"openlab/internal/model"
	"openlab/internal/service"
	"openlab/internal/transport/http/middleware"
)

// ProjectHandler groups project CRUD and engagement endpoints.
type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// writeProjectValidationError maps validation failures to 400 responses.
func writeProjectValidationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, model.ErrTitleRequired):
		httputil.WriteBadRequest(w, "Project title is required")
	case errors.Is(err, model.ErrTitleTooLong):
		httputil.WriteBadRequest(w, "Project title too long")
	case errors.Is(err, model.ErrDescriptionTooLong):
		httputil.WriteBadRequest(w, "Project description too long")
	case errors.Is(err, model.ErrInvalidCategory):
		httputil.WriteBadRequest(w, "Invalid project category")
	default:
		return false
	}
	return true
}

// Create publishes a new project
// POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(r.Context(), userID, &req)
	if err != nil {
		if writeProjectValidationError(w, err) {
			return
		}
		httputil.WriteInternalError(w, "Failed to create project")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, project)
}

// GetByID returns a single project
// GET /projects/{projectID}
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "projectID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), projectID, viewerIDFromContext(r))
	if err != nil {
		if errors.Is(err, model.ErrProjectNotFound) {
			httputil.WriteNotFound(w, "Project not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get project")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

// Update edits a project's fields
// PUT /projects/{projectID}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req model.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(r.Context(), projectID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, "You do not own this project")
		default:
			if writeProjectValidationError(w, err) {
				return
			}
			httputil.WriteInternalError(w, "Failed to update project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

// Delete removes a project
// DELETE /projects/{projectID}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.projectService.Delete(r.Context(), projectID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		case errors.Is(err, model.ErrNotProjectOwner):
			httputil.WriteForbidden(w, "You do not own this project")
		default:
			httputil.WriteInternalError(w, "Failed to delete project")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Project deleted",
	})
}

// List returns visible projects, optionally filtered by a search term
// GET /projects?search=...
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	projects, err := h.projectService.ListVisible(r.Context(), search, viewerIDFromContext(r))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list projects")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}

// ListByAuthor returns a user's projects. Hidden projects are included
// only when the viewer is the author.
// GET /users/{userID}/projects
func (h *ProjectHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := parseIDParam(r, "userID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	projects, err := h.projectService.ListByAuthor(r.Context(), authorID, viewerIDFromContext(r))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list projects")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}

// ListSaved returns the authenticated user's saved projects
// GET /me/saved
func (h *ProjectHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	projects, err := h.projectService.ListSaved(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to list saved projects")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}

// Like adds the user's like to a project
// POST /projects/{projectID}/like
func (h *ProjectHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.projectService.Like, engagementResponse{
		status:      http.StatusCreated,
		message:     "Project liked",
		conflict:    model.ErrAlreadyLiked,
		conflictMsg: "Project already liked",
	})
}

// Unlike removes the user's like
// DELETE /projects/{projectID}/like
func (h *ProjectHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.projectService.Unlike, engagementResponse{
		status:      http.StatusOK,
		message:     "Like removed",
		conflict:    model.ErrNotLiked,
		conflictMsg: "Project not liked",
	})
}

// Save bookmarks a project for the user
// POST /projects/{projectID}/save
func (h *ProjectHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.projectService.Save, engagementResponse{
		status:      http.StatusCreated,
		message:     "Project saved",
		conflict:    model.ErrAlreadySaved,
		conflictMsg: "Project already saved",
	})
}

// Unsave removes the bookmark
// DELETE /projects/{projectID}/save
func (h *ProjectHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.projectService.Unsave, engagementResponse{
		status:      http.StatusOK,
		message:     "Save removed",
		conflict:    model.ErrNotSaved,
		conflictMsg: "Project not saved",
	})
}

type engagementResponse struct {
	status      int
	message     string
	conflict    error
	conflictMsg string
}

type engagementFn func(ctx context.Context, projectID, userID int64) error

func (h *ProjectHandler) engage(w http.ResponseWriter, r *http.Request, fn engagementFn, resp engagementResponse) {
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

	if err := fn(r.Context(), projectID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrProjectNotFound):
			httputil.WriteNotFound(w, "Project not found")
		case errors.Is(err, resp.conflict):
			httputil.WriteConflict(w, resp.conflictMsg)
		default:
			httputil.WriteInternalError(w, "Failed to update engagement")
		}
		return
	}

	httputil.WriteJSON(w, resp.status, map[string]string{
		"message": resp.message,
	})
}
