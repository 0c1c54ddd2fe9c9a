package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/models"
)

var ErrResetNotFound = errors.New("reset request not found")

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	// GetLatest returns the newest request matching (email, token). Older
	// duplicates are tolerated; validation always runs against the newest.
	GetLatest(ctx context.Context, email string, token string) (*models.PasswordReset, error)
	Delete(ctx context.Context, email string, token string) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	query := `
		INSERT INTO password_resets (email, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, reset.Email, reset.Token, reset.CreatedAt, reset.ExpiresAt)
	return err
}

func (r *passwordResetRepository) GetLatest(ctx context.Context, email string, token string) (*models.PasswordReset, error) {
	query := `
		SELECT email, token, created_at, expires_at
		FROM password_resets
		WHERE email = $1 AND token = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var pr models.PasswordReset
	err := r.db.QueryRowContext(ctx, query, email, token).Scan(&pr.Email, &pr.Token, &pr.CreatedAt, &pr.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrResetNotFound
		}
		return nil, err
	}
	return &pr, nil
}

func (r *passwordResetRepository) Delete(ctx context.Context, email string, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE email = $1 AND token = $2`, email, token)
	return err
}
