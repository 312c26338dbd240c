package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cocreate-match/internal/domain"
)

// MatchRepository define el contrato de persistencia para matches.
type MatchRepository interface {
	Create(ctx context.Context, match domain.Match) error
	GetByID(ctx context.Context, id string) (domain.Match, error)
	ListUserIDsMatchedWith(ctx context.Context, userID string) ([]string, error)
	UpdateCompatibilityScore(ctx context.Context, id string, score float64) error
}

type PgMatchRepository struct {
	pool *pgxpool.Pool
}

func NewPgMatchRepository(pool *pgxpool.Pool) *PgMatchRepository {
	return &PgMatchRepository{pool: pool}
}

func (r *PgMatchRepository) Create(ctx context.Context, match domain.Match) error {
	const query = `
		INSERT INTO matches (id, user1_id, user2_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		match.ID,
		match.User1ID,
		match.User2ID,
		match.Status,
		match.CreatedAt,
		match.UpdatedAt,
	)
	return err
}

func (r *PgMatchRepository) GetByID(ctx context.Context, id string) (domain.Match, error) {
	const query = `
		SELECT id, user1_id, user2_id, status, compatibility_score, created_at, updated_at
		FROM matches
		WHERE id = $1
	`
	var m domain.Match
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.User1ID,
		&m.User2ID,
		&m.Status,
		&m.CompatibilityScore,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Match{}, ErrNotFound
	}
	return m, err
}

// ListUserIDsMatchedWith devuelve los IDs con los que el usuario ya tiene un
// match registrado, sin importar en que lado del par quedo.
func (r *PgMatchRepository) ListUserIDsMatchedWith(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT user1_id, user2_id
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var user1, user2 string
		if err := rows.Scan(&user1, &user2); err != nil {
			return nil, err
		}
		if user1 == userID {
			ids = append(ids, user2)
		} else {
			ids = append(ids, user1)
		}
	}
	return ids, rows.Err()
}

// UpdateCompatibilityScore guarda el score agregado de chat en el match,
// una vez completado el analisis en background.
func (r *PgMatchRepository) UpdateCompatibilityScore(ctx context.Context, id string, score float64) error {
	const query = `
		UPDATE matches
		SET compatibility_score = $2, updated_at = $3
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, score, time.Now().UTC())
	return err
}
