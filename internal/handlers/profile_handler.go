package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/middleware"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/models"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/repository"
)

type ProfileHandler struct {
	profiles repository.ProfileRepository
	v        *validator.Validate
}

func NewProfileHandler(profiles repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, v: validator.New()}
}

// @Tags Profile
// @Summary Get profile by user id
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/get-profile/{userId} [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	p, err := h.profiles.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			writeJSONError(w, http.StatusNotFound, "profile_not_found", "Profile not found")
			return
		}
		log.Printf("Failed to get profile %s: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// @Tags Profile
// @Summary Create or replace a profile
// @Accept json
// @Produce json
// @Param body body models.UpdateProfileRequest true "Profile data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/update-profile [post]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	p := &models.Profile{
		ID:       req.UserID,
		Name:     req.Name,
		Email:    req.Email,
		CPF:      req.CPF,
		Telefone: req.Telefone,
	}
	if err := h.profiles.Upsert(r.Context(), p); err != nil {
		log.Printf("Failed to upsert profile %s: %v", req.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"data":    p,
	})
}

// @Tags Profile
// @Summary Get the authenticated user's profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing session")
		return
	}

	p, err := h.profiles.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			writeJSONError(w, http.StatusNotFound, "profile_not_found", "Profile not found")
			return
		}
		log.Printf("Failed to get profile %s: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	writeJSON(w, http.StatusOK, p)
}
