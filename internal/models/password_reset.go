package models

import "time"

// PasswordReset is one outstanding reset request. The token is stored raw and
// matched by exact (email, token) pair; rows are deleted once consumed.
type PasswordReset struct {
	Email     string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
