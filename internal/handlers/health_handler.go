package handlers

import (
	"database/sql"
	"net/http"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root answers with a JSON banner so load balancers and humans get a 200.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "PontoGorilla API"})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	type dbStatus struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}
	resp := struct {
		Status string   `json:"status"`
		DB     dbStatus `json:"db"`
	}{Status: "ok", DB: dbStatus{Status: "ok"}}

	if err := h.db.PingContext(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.DB.Status = "down"
		resp.DB.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
