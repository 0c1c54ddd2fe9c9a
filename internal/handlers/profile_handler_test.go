package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/auth"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/middleware"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/models"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/repository"
)

type mockProfileRepo struct {
	profiles map[string]*models.Profile
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p := m.profiles[id]
	if p == nil {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error {
	p := m.profiles[id]
	if p == nil {
		return repository.ErrProfileNotFound
	}
	p.AvatarURL = avatarURL
	return nil
}

func TestGetProfileNotFoundReturns404(t *testing.T) {
	repo := &mockProfileRepo{profiles: map[string]*models.Profile{}}
	h := NewProfileHandler(repo)

	r := chi.NewRouter()
	r.Get("/get-profile/{userId}", h.GetProfile)

	req := httptest.NewRequest(http.MethodGet, "/get-profile/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["error"] != "profile_not_found" {
		t.Fatalf("expected error=profile_not_found got %v", resp)
	}
}

func TestGetProfileIsIdempotent(t *testing.T) {
	repo := &mockProfileRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", Name: "Ana", Email: "a@x.com", CPF: "123", Telefone: "999"},
	}}
	h := NewProfileHandler(repo)

	r := chi.NewRouter()
	r.Get("/get-profile/{userId}", h.GetProfile)

	get := func() map[string]any {
		req := httptest.NewRequest(http.MethodGet, "/get-profile/u1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		return resp
	}

	first := get()
	second := get()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical responses, got %v then %v", first, second)
	}
	if _, ok := first["password_hash"]; ok {
		t.Fatalf("password hash leaked in response: %v", first)
	}
}

func TestUpdateProfileReplacesRecord(t *testing.T) {
	repo := &mockProfileRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", Name: "Old", Email: "old@x.com", CPF: "111", Telefone: "111"},
	}}
	h := NewProfileHandler(repo)

	payload := map[string]any{
		"userId":   "u1",
		"name":     "Ana",
		"email":    "a@x.com",
		"cpf":      "12345678900",
		"telefone": "11999999999",
	}
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/update-profile", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Message string         `json:"message"`
		Data    models.Profile `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Data.Name != "Ana" {
		t.Fatalf("expected replaced profile, got %+v", resp.Data)
	}
	if repo.profiles["u1"].Name != "Ana" {
		t.Fatalf("expected store updated, got %+v", repo.profiles["u1"])
	}
}

func TestUpdateProfileMissingFieldsReturns400(t *testing.T) {
	h := NewProfileHandler(&mockProfileRepo{profiles: map[string]*models.Profile{}})

	payload := map[string]any{"userId": "u1", "name": "Ana"}
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/update-profile", bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestMeRequiresValidSession(t *testing.T) {
	repo := &mockProfileRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", Name: "Ana", Email: "a@x.com", CPF: "123", Telefone: "999"},
	}}
	h := NewProfileHandler(repo)
	tokens := auth.NewManager("dev")

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(tokens))
		r.Get("/me", h.Me)
	})

	// No token
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Valid token
	token, err := tokens.IssueSession("u1")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d (%s)", w.Code, w.Body.String())
	}
	var p models.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if p.ID != "u1" {
		t.Fatalf("expected own profile, got %+v", p)
	}
}
