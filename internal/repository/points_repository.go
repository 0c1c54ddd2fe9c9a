package repository

import (
	"context"
	"database/sql"

	"github.com/DavidLucasK/BackendPontoGorilla/internal/models"
)

type PointsRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.PointRecord, error)
}

type pointsRepository struct {
	db *sql.DB
}

func NewPointsRepository(db *sql.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) ListByUser(ctx context.Context, userID string) ([]models.PointRecord, error) {
	query := `
		SELECT id, user_id, points, description, created_at
		FROM points
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PointRecord
	for rows.Next() {
		var rec models.PointRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Points, &rec.Description, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
