package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cocreate-match/internal/domain"
)

// MessageRepository define el contrato de persistencia para mensajes.
type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByMatchID(ctx context.Context, matchID string, limit int) ([]domain.Message, error)
	CountByMatchID(ctx context.Context, matchID string) (int, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, match_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.MatchID,
		message.SenderID,
		message.Content,
		message.CreatedAt,
	)
	return err
}

// ListByMatchID devuelve los ultimos mensajes del match en orden cronologico.
func (r *PgMessageRepository) ListByMatchID(ctx context.Context, matchID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
		SELECT id, match_id, sender_id, content, created_at
		FROM (
			SELECT id, match_id, sender_id, content, created_at
			FROM messages
			WHERE match_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, matchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.MatchID,
			&msg.SenderID,
			&msg.Content,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *PgMessageRepository) CountByMatchID(ctx context.Context, matchID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE match_id = $1`
	var count int
	err := r.pool.QueryRow(ctx, query, matchID).Scan(&count)
	return count, err
}
