package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// TraitVectorRepository persiste el vector de rasgos extraido de la bio y
// permite descubrir perfiles similares por distancia coseno.
type TraitVectorRepository interface {
	Upsert(ctx context.Context, userID string, embedding pgvector.Vector) error
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, excludeUserID string, k int) ([]string, error)
}

type PgTraitVectorRepository struct {
	pool *pgxpool.Pool
}

func NewPgTraitVectorRepository(pool *pgxpool.Pool) *PgTraitVectorRepository {
	return &PgTraitVectorRepository{pool: pool}
}

func (r *PgTraitVectorRepository) Upsert(ctx context.Context, userID string, embedding pgvector.Vector) error {
	const query = `
		INSERT INTO trait_vectors (user_id, embedding, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, userID, embedding, time.Now().UTC())
	return err
}

// SearchSimilar devuelve los k usuarios con el vector de rasgos mas cercano.
func (r *PgTraitVectorRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, excludeUserID string, k int) ([]string, error) {
	if k <= 0 {
		k = 10
	}
	const query = `
		SELECT user_id
		FROM trait_vectors
		WHERE user_id != $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, excludeUserID, embedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
