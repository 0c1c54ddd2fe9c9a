package handlers

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/auth"
	"github.com/DavidLucasK/BackendPontoGorilla/internal/config"
)

type recordingMailer struct {
	to       string
	subject  string
	textBody string
	htmlBody string
	err      error
}

func (m *recordingMailer) Send(to, subject, textBody, htmlBody string) error {
	m.to = to
	m.subject = subject
	m.textBody = textBody
	m.htmlBody = htmlBody
	return m.err
}

func newTestAuthHandler(t *testing.T, db *sql.DB, mailer *recordingMailer) *AuthHandler {
	t.Helper()
	cfg := &config.Config{JWTSecret: "dev", FrontendURL: "https://front.example"}
	return NewAuthHandler(db, cfg, auth.NewManager(cfg.JWTSecret), mailer)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

const selectUserByEmail = `SELECT id, email, password_hash, created_at\s+FROM users\s+WHERE email = \$1`

func TestRegisterSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO users").WillReturnRows(
		sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()),
	)

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Register, "/api/auth/register", map[string]any{"email": "a@x.com", "password": "password1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] == nil {
		t.Fatalf("expected message, got %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterExistingEmailReturns400(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u1", "a@x.com", "hash", time.Now().UTC()),
	)

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Register, "/api/auth/register", map[string]any{"email": "a@x.com", "password": "password1"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "user_exists" {
		t.Fatalf("expected error=user_exists got %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterDuplicateInsertRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Register, "/api/auth/register", map[string]any{"email": "a@x.com", "password": "password1"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "user_exists" {
		t.Fatalf("expected error=user_exists got %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterStoreErrorReturns500(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnError(errors.New("connection reset"))

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Register, "/api/auth/register", map[string]any{"email": "a@x.com", "password": "password1"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d (%s)", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "connection reset") {
		t.Fatalf("store detail leaked to client: %s", w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoginSuccessTokenRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), 10)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword: %v", err)
	}

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u1", "a@x.com", string(hash), time.Now().UTC()),
	)

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Login, "/api/auth/login", map[string]any{"email": "a@x.com", "password": "pw1"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["userId"] != "u1" {
		t.Fatalf("expected userId=u1 got %v", resp)
	}

	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("expected token got %v", resp)
	}
	userID, err := auth.NewManager("dev").VerifySession(token)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("token verified to %q, want u1", userID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoginMissingFieldsReturns400(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Login, "/api/auth/login", map[string]any{"email": "a@x.com"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestLoginUnknownEmailReturns400(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("nobody@x.com").WillReturnError(sql.ErrNoRows)

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Login, "/api/auth/login", map[string]any{"email": "nobody@x.com", "password": "pw1"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "email_not_registered" {
		t.Fatalf("expected error=email_not_registered got %v", resp)
	}
}

func TestLoginWrongPasswordReturns400(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), 10)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword: %v", err)
	}

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u1", "a@x.com", string(hash), time.Now().UTC()),
	)

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.Login, "/api/auth/login", map[string]any{"email": "a@x.com", "password": "pw2"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "invalid_password" {
		t.Fatalf("expected error=invalid_password got %v", resp)
	}
}

// timeCapture records a time.Time argument passed to the mock.
type timeCapture struct {
	t *time.Time
}

func (c *timeCapture) Match(v driver.Value) bool {
	tt, ok := v.(time.Time)
	if ok {
		*c.t = tt
	}
	return ok
}

func TestForgotPasswordCreatesResetAndSendsMail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u1", "a@x.com", "hash", time.Now().UTC()),
	)

	var createdAt, expiresAt time.Time
	mock.ExpectExec("INSERT INTO password_resets").
		WithArgs("a@x.com", sqlmock.AnyArg(), &timeCapture{&createdAt}, &timeCapture{&expiresAt}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mailer := &recordingMailer{}
	h := newTestAuthHandler(t, db, mailer)
	w := postJSON(t, h.ForgotPassword, "/api/auth/forgot", map[string]any{"email": "a@x.com"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if got := expiresAt.Sub(createdAt); got != 15*time.Minute {
		t.Fatalf("expected 15m token lifetime, got %s", got)
	}
	if mailer.to != "a@x.com" {
		t.Fatalf("expected mail to a@x.com, got %q", mailer.to)
	}
	if !strings.Contains(mailer.textBody, "https://front.example/reset.html?") {
		t.Fatalf("expected reset link in mail body, got %q", mailer.textBody)
	}
	if !strings.Contains(mailer.textBody, "token=") || !strings.Contains(mailer.textBody, "email=") {
		t.Fatalf("expected token and email query params in link, got %q", mailer.textBody)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestForgotPasswordUnknownEmailReturns400(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("nobody@x.com").WillReturnError(sql.ErrNoRows)

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.ForgotPassword, "/api/auth/forgot", map[string]any{"email": "nobody@x.com"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestForgotPasswordSendFailureReturns500(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("a@x.com").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u1", "a@x.com", "hash", time.Now().UTC()),
	)
	// The reset row is still written; only the delivery step fails.
	mock.ExpectExec("INSERT INTO password_resets").WillReturnResult(sqlmock.NewResult(0, 1))

	h := newTestAuthHandler(t, db, &recordingMailer{err: errors.New("smtp down")})
	w := postJSON(t, h.ForgotPassword, "/api/auth/forgot", map[string]any{"email": "a@x.com"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "email_error" {
		t.Fatalf("expected error=email_error got %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

const selectLatestReset = `SELECT email, token, created_at, expires_at\s+FROM password_resets\s+WHERE email = \$1 AND token = \$2`

func TestResetPasswordSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(selectLatestReset).
		WithArgs("a@x.com", "tok123").
		WillReturnRows(sqlmock.NewRows([]string{"email", "token", "created_at", "expires_at"}).
			AddRow("a@x.com", "tok123", now, now.Add(10*time.Minute)))

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(sqlmock.AnyArg(), "a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM password_resets").
		WithArgs("a@x.com", "tok123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/auth/reset",
		map[string]any{"email": "a@x.com", "token": "tok123", "newPassword": "pw3"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResetPasswordMissingFieldsReturns400(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/auth/reset", map[string]any{"email": "a@x.com", "token": "tok123"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestResetPasswordUnknownTokenReturns400(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(selectLatestReset).
		WithArgs("a@x.com", "bad-token").
		WillReturnError(sql.ErrNoRows)

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/auth/reset",
		map[string]any{"email": "a@x.com", "token": "bad-token", "newPassword": "pw3"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "invalid_token" {
		t.Fatalf("expected error=invalid_token got %v", resp)
	}
}

func TestResetPasswordExpiredTokenReturns400(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(selectLatestReset).
		WithArgs("a@x.com", "tok123").
		WillReturnRows(sqlmock.NewRows([]string{"email", "token", "created_at", "expires_at"}).
			AddRow("a@x.com", "tok123", now.Add(-20*time.Minute), now.Add(-5*time.Minute)))

	h := newTestAuthHandler(t, db, &recordingMailer{})
	w := postJSON(t, h.ResetPassword, "/api/auth/reset",
		map[string]any{"email": "a@x.com", "token": "tok123", "newPassword": "pw3"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "token_expired" {
		t.Fatalf("expected error=token_expired got %v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
