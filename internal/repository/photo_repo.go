package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cocreate-match/internal/domain"
)

// PhotoRepository expone las referencias de fotos de un usuario.
type PhotoRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]domain.Photo, error)
}

type PgPhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPgPhotoRepository(pool *pgxpool.Pool) *PgPhotoRepository {
	return &PgPhotoRepository{pool: pool}
}

func (r *PgPhotoRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Photo, error) {
	const query = `
		SELECT id, user_id, url, position, created_at
		FROM photos
		WHERE user_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var photo domain.Photo
		if err := rows.Scan(
			&photo.ID,
			&photo.UserID,
			&photo.URL,
			&photo.Position,
			&photo.CreatedAt,
		); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}
