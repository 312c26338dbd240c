package domain

import "time"

// Match es el registro persistido de un par de usuarios que hicieron match.
type Match struct {
	ID                 string     `json:"id"`
	User1ID            string     `json:"user1_id"`
	User2ID            string     `json:"user2_id"`
	Status             string     `json:"status"`
	CompatibilityScore *float64   `json:"compatibility_score,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ComponentScore es un componente del desglose: valor en [0,1] y el peso
// efectivamente aplicado (0 cuando el componente estuvo ausente).
type ComponentScore struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// ScoreBreakdown agrupa los componentes del score final.
type ScoreBreakdown struct {
	Basic       ComponentScore `json:"basic"`
	Personality ComponentScore `json:"personality"`
	Visual      ComponentScore `json:"visual"`
	Interaction ComponentScore `json:"interaction"`
	Values      ComponentScore `json:"values"`
}

// BasicBreakdown es el desglose del scorer estructurado (todo en [0,1]).
type BasicBreakdown struct {
	SharedInterests    float64 `json:"shared_interests"`
	CollaborationStyle float64 `json:"collaboration_style"`
	ContributionScore  float64 `json:"contribution_score"`
	ActivityAlignment  float64 `json:"activity_alignment"`
	ProximityScore     float64 `json:"proximity_score"`
	Total              float64 `json:"total"`
}

// MatchResult es la salida del agregador para un candidato.
type MatchResult struct {
	CandidateID         string         `json:"candidate_id"`
	Score               float64        `json:"score"` // 0-100
	Breakdown           ScoreBreakdown `json:"breakdown"`
	Insights            []string       `json:"insights,omitempty"`
	Potential           string         `json:"potential"`
	UsedPremiumFeatures bool           `json:"used_premium_features"`
	Boosted             bool           `json:"boosted,omitempty"`
	LastUpdated         time.Time      `json:"last_updated"`
}
