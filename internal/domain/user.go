package domain

import "time"

const (
	TierBasic   = "basic"
	TierPremium = "premium"
	TierElite   = "elite"
)

// Account guarda credenciales y datos de autenticacion; separado del perfil
// publico que consume el motor de matching.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	City string  `json:"city,omitempty"`
}

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Preferences son los filtros de busqueda configurados por el usuario.
type Preferences struct {
	AgeRange      AgeRange `json:"age_range"`
	MaxDistanceKm float64  `json:"max_distance_km"`
	Genders       []string `json:"genders,omitempty"`
}

// ContributionEvent es una entrada del historial de co-creacion:
// un evento con tipo de actividad y valor numerico 0-100.
type ContributionEvent struct {
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserProfile es el perfil que alimenta el scoring. El motor lo trata como
// entrada de solo lectura: el store externo es el dueno.
type UserProfile struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Gender              string              `json:"gender,omitempty"`
	DateOfBirth         time.Time           `json:"date_of_birth"`
	Bio                 string              `json:"bio,omitempty"`
	Interests           []string            `json:"interests,omitempty"`
	ContributionHistory []ContributionEvent `json:"contribution_history,omitempty"`
	CoCreationScore     float64             `json:"co_creation_score"`
	Location            *Location           `json:"location,omitempty"`
	Preferences         Preferences         `json:"preferences"`
	Photos              []string            `json:"photos,omitempty"`
	Tier                string              `json:"tier"`
	ProfileBoostExpires *time.Time          `json:"profile_boost_expires,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// Age calcula la edad en anos completos al instante dado.
func (p *UserProfile) Age(now time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	years := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// BoostActive indica si el perfil tiene un boost vigente.
func (p *UserProfile) BoostActive(now time.Time) bool {
	return p.ProfileBoostExpires != nil && p.ProfileBoostExpires.After(now)
}
