package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cocreate-match/internal/domain"
)

// SubscriptionRepository resuelve el tier de suscripcion de un usuario.
// Es un colaborador externo: el motor solo necesita la consulta de tier.
type SubscriptionRepository interface {
	GetTier(ctx context.Context, userID string) (string, error)
}

type PgSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSubscriptionRepository(pool *pgxpool.Pool) *PgSubscriptionRepository {
	return &PgSubscriptionRepository{pool: pool}
}

// GetTier devuelve el tier activo; sin suscripcion vigente resuelve a basic.
func (r *PgSubscriptionRepository) GetTier(ctx context.Context, userID string) (string, error) {
	const query = `
		SELECT tier
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active' AND expires_at > NOW()
		ORDER BY expires_at DESC
		LIMIT 1
	`
	var tier string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TierBasic, nil
	}
	if err != nil {
		return "", err
	}
	return tier, nil
}
