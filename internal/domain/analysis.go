package domain

import (
	"time"
)

const (
	AnalysisPersonality = "personality"
	AnalysisVisual      = "visual"
	AnalysisChat        = "chat"
)

// PairKey identifica un par de usuarios sin importar el orden. NewPairKey
// canonicaliza (ordena los IDs) para que (A,B) y (B,A) resuelvan igual.
type PairKey struct {
	A string `json:"a"`
	B string `json:"b"`
}

func NewPairKey(user1, user2 string) PairKey {
	if user2 < user1 {
		user1, user2 = user2, user1
	}
	return PairKey{A: user1, B: user2}
}

func (k PairKey) String() string {
	return k.A + ":" + k.B
}

// PersonalityAnalysis es el payload cacheado del analisis de bios.
type PersonalityAnalysis struct {
	PersonalityScore float64            `json:"personality_score"` // 0-1
	ValuesScore      float64            `json:"values_score"`      // 0-1
	SharedValues     []string           `json:"shared_values,omitempty"`
	TraitsA          map[string]float64 `json:"traits_a,omitempty"`
	TraitsB          map[string]float64 `json:"traits_b,omitempty"`
	Insight          string             `json:"insight,omitempty"`
}

// VisualProfile resume el estilo de vida inferido del set de fotos.
type VisualProfile struct {
	PrimaryActivities       []string `json:"primary_activities,omitempty"`
	SocialPreference        string   `json:"social_preference"`
	EnvironmentalPreference string   `json:"environmental_preference"`
	LifestyleKeywords       []string `json:"lifestyle_keywords,omitempty"`
	ActivityLevel           string   `json:"activity_level"` // low | moderate | high
}

// VisualAnalysis es el payload cacheado del analisis visual de un par.
type VisualAnalysis struct {
	Score    float64        `json:"score"` // 0-1
	Insights []string       `json:"insights,omitempty"`
	ProfileA *VisualProfile `json:"profile_a,omitempty"`
	ProfileB *VisualProfile `json:"profile_b,omitempty"`
}

// ResponseTimes resume la latencia de respuesta entre remitentes alternados.
type ResponseTimes struct {
	AverageMinutes float64 `json:"average_minutes"`
	Pattern        string  `json:"pattern"` // rapid-fire | engaged | thoughtful | sporadic
}

type MessageLengths struct {
	AverageA   float64 `json:"average_a"`
	AverageB   float64 `json:"average_b"`
	Similarity float64 `json:"similarity"` // 0-1
}

type EmotionalTone struct {
	Positivity  float64 `json:"positivity"`
	Negativity  float64 `json:"negativity"`
	EmojiUsage  float64 `json:"emoji_usage"`
	Enthusiasm  float64 `json:"enthusiasm"`
	Curiosity   float64 `json:"curiosity"`
	OverallTone string  `json:"overall_tone"` // positive | negative | neutral
}

type ConversationBalance struct {
	MessageCountBalance float64 `json:"message_count_balance"`
	IsBalanced          bool    `json:"is_balanced"`
}

// ConversationAnalysis agrupa las sub-senales de una conversacion.
type ConversationAnalysis struct {
	ResponseTime  ResponseTimes       `json:"response_time"`
	MessageLength MessageLengths      `json:"message_length"`
	EmotionalTone EmotionalTone       `json:"emotional_tone"`
	Topics        map[string]float64  `json:"topics,omitempty"`
	Balance       ConversationBalance `json:"balance"`
	Compatibility float64             `json:"compatibility"` // 0-100
}

// ChatAnalysis es el payload cacheado del analisis de conversacion.
type ChatAnalysis struct {
	Compatibility float64              `json:"compatibility"` // 0-100
	Insights      []string             `json:"insights,omitempty"`
	Analysis      ConversationAnalysis `json:"analysis"`
}

// PairAnalysis es la entrada cacheada por par y tipo de analisis.
type PairAnalysis struct {
	Pair       PairKey `json:"pair"`
	Type       string  `json:"type"`
	Payload    []byte  `json:"payload"`
	ComputedAt time.Time `json:"computed_at"`
}

// Estados del ciclo de vida de un job de analisis en background.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobRetrying  = "retrying"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// AnalysisJob es una unidad de trabajo diferido: recalcular la senal visual
// o de chat de un par y escribirla en cache.
type AnalysisJob struct {
	ID          string        `json:"id"`
	Pair        PairKey       `json:"pair"`
	MatchID     string        `json:"match_id,omitempty"`
	Type        string        `json:"type"`
	Attempts    int           `json:"attempts"`
	Delay       time.Duration `json:"delay"`
	ScheduledAt time.Time     `json:"scheduled_at"`
}
