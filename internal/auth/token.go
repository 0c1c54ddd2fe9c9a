package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTTL = time.Hour

// Manager issues and verifies session tokens and generates opaque
// password-reset tokens.
type Manager struct {
	secret string
}

func NewManager(secret string) *Manager {
	return &Manager{secret: secret}
}

// IssueSession signs a 1-hour HS256 token carrying the user id.
func (m *Manager) IssueSession(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySession validates signature and expiry and returns the user id.
func (m *Manager) VerifySession(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("session token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected session token claims")
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", fmt.Errorf("session token missing userId")
	}
	return userID, nil
}

// NewResetToken draws 32 bytes from crypto/rand, rendered as 64 hex chars.
// Validity is established only by lookup in the password_resets table.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
