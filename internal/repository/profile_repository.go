package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// Upsert fully replaces any existing profile row for the id.
	Upsert(ctx context.Context, profile *models.Profile) error
	UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, name, email, cpf, telefone, avatar_url
		FROM profiles
		WHERE id = $1
	`

	var p models.Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email, &p.CPF, &p.Telefone, &p.AvatarURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, name, email, cpf, telefone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			email = EXCLUDED.email,
			cpf = EXCLUDED.cpf,
			telefone = EXCLUDED.telefone
	`

	_, err := r.db.ExecContext(ctx, query, profile.ID, profile.Name, profile.Email, profile.CPF, profile.Telefone)
	return err
}

func (r *profileRepository) UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET avatar_url = $1 WHERE id = $2`, avatarURL, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}
