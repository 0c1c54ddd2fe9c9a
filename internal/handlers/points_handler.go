package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/repository"
)

type PointsHandler struct {
	points repository.PointsRepository
}

func NewPointsHandler(points repository.PointsRepository) *PointsHandler {
	return &PointsHandler{points: points}
}

// @Tags Points
// @Summary List point records for a user
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} models.PointRecord
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/points/{userId} [get]
func (h *PointsHandler) ListPoints(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	records, err := h.points.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list points for %s: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	// An empty result is a 404 by convention of this API.
	if len(records) == 0 {
		writeJSONError(w, http.StatusNotFound, "points_not_found", "No points found for this user")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
