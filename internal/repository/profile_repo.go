package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cocreate-match/internal/domain"
)

var ErrNotFound = errors.New("not found")

// ProfileRepository define el contrato de lectura de perfiles. El motor de
// matching solo lee; el dueno de los datos es el servicio de perfiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (domain.UserProfile, error)
	ListCandidates(ctx context.Context, viewer domain.UserProfile, excludeIDs []string, limit, offset int) ([]domain.UserProfile, error)
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

const profileColumns = `
	id, name, gender, date_of_birth, bio, interests, contribution_history,
	co_creation_score, location, preferences, photos, tier,
	profile_boost_expires, created_at
`

func (r *PgProfileRepository) GetByID(ctx context.Context, id string) (domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	profile, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, ErrNotFound
	}
	return profile, err
}

// ListCandidates devuelve perfiles activos aplicando el filtro de genero del
// viewer y excluyendo al propio viewer y a los usuarios ya swipeados.
func (r *PgProfileRepository) ListCandidates(ctx context.Context, viewer domain.UserProfile, excludeIDs []string, limit, offset int) ([]domain.UserProfile, error) {
	if limit <= 0 {
		limit = 50
	}

	exclude := append([]string{viewer.ID}, excludeIDs...)

	query := `SELECT ` + profileColumns + `
		FROM profiles
		WHERE status = 'active' AND verified = true
		  AND id != ALL($1)
	`
	args := []interface{}{exclude}

	if len(viewer.Preferences.Genders) > 0 {
		query += fmt.Sprintf(" AND gender = ANY($%d)", len(args)+1)
		args = append(args, viewer.Preferences.Genders)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.UserProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanProfile(row pgxRow) (domain.UserProfile, error) {
	var (
		p                domain.UserProfile
		interestsRaw     []byte
		contributionsRaw []byte
		locationRaw      []byte
		preferencesRaw   []byte
		photosRaw        []byte
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Gender,
		&p.DateOfBirth,
		&p.Bio,
		&interestsRaw,
		&contributionsRaw,
		&p.CoCreationScore,
		&locationRaw,
		&preferencesRaw,
		&photosRaw,
		&p.Tier,
		&p.ProfileBoostExpires,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.UserProfile{}, err
	}

	// Columnas jsonb: un payload corrupto se reporta, no se ignora.
	if err := unmarshalInto(interestsRaw, &p.Interests); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode interests: %w", err)
	}
	if err := unmarshalInto(contributionsRaw, &p.ContributionHistory); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode contribution history: %w", err)
	}
	if err := unmarshalInto(locationRaw, &p.Location); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode location: %w", err)
	}
	if err := unmarshalInto(preferencesRaw, &p.Preferences); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode preferences: %w", err)
	}
	if err := unmarshalInto(photosRaw, &p.Photos); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode photos: %w", err)
	}
	return p, nil
}

func unmarshalInto(raw []byte, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
