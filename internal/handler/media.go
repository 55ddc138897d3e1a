package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"openlab/internal/httputil"
	"openlab/internal/model"
	"openlab/internal/service"
	"openlab/internal/transport/http/middleware"
)

// MediaHandler serves profile image uploads. Uploaded images are resized,
// stored in R2 and the resulting URL is written onto the user's profile.
type MediaHandler struct {
	mediaService *service.MediaService
	userService  *service.UserService
}

func NewMediaHandler(mediaService *service.MediaService, userService *service.UserService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		userService:  userService,
	}
}

type uploadFn func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)

// UploadAvatar replaces the authenticated user's avatar
// POST /me/avatar
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadProfileImage(w, r, h.mediaService.UploadAvatar, func(url string) *model.UpdateProfileRequest {
		return &model.UpdateProfileRequest{PhotoURL: &url}
	})
}

// UploadHeader replaces the authenticated user's header banner
// POST /me/header
func (h *MediaHandler) UploadHeader(w http.ResponseWriter, r *http.Request) {
	h.uploadProfileImage(w, r, h.mediaService.UploadHeader, func(url string) *model.UpdateProfileRequest {
		return &model.UpdateProfileRequest{HeaderURL: &url}
	})
}

func (h *MediaHandler) uploadProfileImage(w http.ResponseWriter, r *http.Request, upload uploadFn, patch func(url string) *model.UpdateProfileRequest) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Form field 'image' is required")
		return
	}
	defer file.Close()

	result, err := upload(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, patch(result.URL))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to update profile image")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":   user,
		"upload": result,
	})
}
