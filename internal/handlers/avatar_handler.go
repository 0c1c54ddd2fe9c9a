package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/config"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/middleware"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/repository"
)

// maxAvatarSize caps the multipart body at 10MB, same limit the old upload
// layer enforced.
const maxAvatarSize = 10 << 20

type AvatarHandler struct {
	profiles      repository.ProfileRepository
	s3Client      *s3.Client
	bucket        string
	publicBaseURL string
}

func NewAvatarHandler(profiles repository.ProfileRepository, s3Config *config.S3Config) *AvatarHandler {
	return &AvatarHandler{
		profiles:      profiles,
		s3Client:      s3Config.Client,
		bucket:        s3Config.Bucket,
		publicBaseURL: s3Config.PublicBaseURL,
	}
}

// @Tags Profile
// @Summary Upload a profile avatar
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/upload-avatar [post]
func (h *AvatarHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing session")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "avatar file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		writeJSONError(w, http.StatusBadRequest, "validation_error", "avatar must be an image file")
		return
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)
	contentType := header.Header.Get("Content-Type")

	uploader := manager.NewUploader(h.s3Client)
	_, err = uploader.Upload(r.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Failed to upload avatar %s: %v", key, err)
		writeJSONError(w, http.StatusInternalServerError, "upload_failed", "Failed to upload avatar")
		return
	}

	avatarURL := h.publicURL(key)
	if err := h.profiles.UpdateAvatarURL(r.Context(), userID, avatarURL); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			writeJSONError(w, http.StatusNotFound, "profile_not_found", "Profile not found")
			return
		}
		log.Printf("Failed to store avatar URL for %s: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Avatar uploaded successfully",
		"avatar_url": avatarURL,
	})
}

func (h *AvatarHandler) publicURL(key string) string {
	if h.publicBaseURL != "" {
		return strings.TrimSuffix(h.publicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", h.bucket, key)
}
