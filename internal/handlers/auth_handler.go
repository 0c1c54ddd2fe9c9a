package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/auth"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/config"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/models"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/repository"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/services"
)

const (
	bcryptCost = 10
	resetTTL   = 15 * time.Minute
)

type AuthHandler struct {
	users  repository.UserRepository
	resets repository.PasswordResetRepository
	tokens *auth.Manager
	mailer services.EmailSender
	cfg    *config.Config
	v      *validator.Validate
}

func NewAuthHandler(db *sql.DB, cfg *config.Config, tokens *auth.Manager, mailer services.EmailSender) *AuthHandler {
	return &AuthHandler{
		users:  repository.NewUserRepository(db),
		resets: repository.NewPasswordResetRepository(db),
		tokens: tokens,
		mailer: mailer,
		cfg:    cfg,
		v:      validator.New(),
	}
}

// @Tags Auth
// @Summary Register a new account
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	_, err := h.users.GetByEmail(r.Context(), req.Email)
	if err == nil {
		writeJSONError(w, http.StatusBadRequest, "user_exists", "User already exists")
		return
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		log.Printf("Failed to check existing user %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Create(r.Context(), u); err != nil {
		// Closes the lookup/insert race against a concurrent registration.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			writeJSONError(w, http.StatusBadRequest, "user_exists", "User already exists")
			return
		}
		log.Printf("Failed to create user %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	writeJSONMessage(w, http.StatusCreated, "Account created successfully!")
}

// @Tags Auth
// @Summary Log in
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "Email and password are required")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSONError(w, http.StatusBadRequest, "email_not_registered", "Email not registered")
			return
		}
		log.Printf("Failed to look up user %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_password", "Incorrect password")
		return
	}

	token, err := h.tokens.IssueSession(u.ID)
	if err != nil {
		log.Printf("Failed to issue session token for %s: %v", u.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:   token,
		UserID:  u.ID,
		Message: "Login successful!",
	})
}

// @Tags Auth
// @Summary Request a password reset email
// @Accept json
// @Produce json
// @Param body body models.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/forgot [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSONError(w, http.StatusBadRequest, "user_not_found", "User not found")
			return
		}
		log.Printf("Failed to look up user %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	token, err := auth.NewResetToken()
	if err != nil {
		log.Printf("Failed to generate reset token: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	now := time.Now().UTC()
	reset := &models.PasswordReset{
		Email:     u.Email,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(resetTTL),
	}
	if err := h.resets.Create(r.Context(), reset); err != nil {
		log.Printf("Failed to store reset request for %s: %v", u.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	// The reset row above stays valid even if delivery fails; the caller can
	// retry and whichever request is newest wins on reset.
	subject, textBody, htmlBody := services.BuildResetEmail(h.cfg.FrontendURL, u.Email, token)
	if err := h.mailer.Send(u.Email, subject, textBody, htmlBody); err != nil {
		log.Printf("Failed to send reset email to %s: %v", u.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "email_error", "Failed to send email")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Email sent successfully!")
}

// @Tags Auth
// @Summary Reset password with a token
// @Accept json
// @Produce json
// @Param body body models.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/reset [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Email == "" || req.Token == "" || req.NewPassword == "" {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "Incomplete data")
		return
	}

	reset, err := h.resets.GetLatest(r.Context(), req.Email, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrResetNotFound) {
			writeJSONError(w, http.StatusBadRequest, "invalid_token", "Invalid or expired token")
			return
		}
		log.Printf("Failed to look up reset request for %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	if time.Now().UTC().After(reset.ExpiresAt) {
		writeJSONError(w, http.StatusBadRequest, "token_expired", "Token expired")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		log.Printf("Failed to hash new password: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	if err := h.users.UpdatePasswordHashByEmail(r.Context(), req.Email, string(hash)); err != nil {
		log.Printf("Failed to update password for %s: %v", req.Email, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Server error")
		return
	}

	// Removes every row carrying this exact (email, token) pair.
	if err := h.resets.Delete(r.Context(), req.Email, req.Token); err != nil {
		log.Printf("Failed to delete consumed reset token for %s: %v", req.Email, err)
	}

	writeJSONMessage(w, http.StatusOK, "Password reset successfully")
}
