package service

import (
	"math"
	"sort"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// Vocabulario fijo de rasgos; el orden define el layout del embedding.
var traitVocabulary = []string{
	"openness", "conscientiousness", "extraversion",
	"agreeableness", "neuroticism", "creativity",
	"leadership", "collaboration", "innovation",
}

var traitKeywords = map[string][]string{
	"openness":          {"creative", "innovative", "curious", "artistic", "imaginative", "explore", "new ideas"},
	"conscientiousness": {"organized", "reliable", "responsible", "detail", "planning", "structured"},
	"extraversion":      {"social", "outgoing", "energetic", "talkative", "party", "people person", "team"},
	"agreeableness":     {"kind", "helpful", "cooperative", "empathetic", "caring", "supportive"},
	"neuroticism":       {"calm", "stable", "relaxed", "stress-free", "peaceful", "balanced"},
	"creativity":        {"create", "design", "build", "make", "craft", "art", "music", "write"},
	"leadership":        {"lead", "manage", "organize", "initiative", "founder", "started", "ceo"},
	"collaboration":     {"team", "together", "collaborate", "partner", "group", "community"},
	"innovation":        {"innovate", "disrupt", "transform", "revolutionize", "pioneer", "cutting-edge"},
}

var valueKeywords = map[string][]string{
	"sustainability":  {"sustainable", "environment", "eco", "green", "climate"},
	"social impact":   {"impact", "change", "help", "volunteer", "charity", "nonprofit"},
	"personal growth": {"growth", "learn", "improve", "develop", "evolve"},
	"family":          {"family", "kids", "children", "parent"},
	"adventure":       {"adventure", "travel", "explore", "discover"},
	"health":          {"health", "fitness", "wellness", "yoga", "meditation"},
	"technology":      {"tech", "code", "software", "digital", "ai", "startup"},
	"arts":            {"art", "music", "dance", "theater", "creative", "design"},
}

// Clases de combinacion: en los rasgos de similitud conviene parecerse, en
// los complementarios una diferencia cercana a 0.5 puntua mejor.
var (
	similarityTraits    = []string{"openness", "agreeableness", "creativity", "innovation"}
	complementaryTraits = []string{"extraversion", "leadership"}
)

// TextSignalExtractor deriva rasgos de personalidad y valores de la bio por
// matching de lexico. Bio vacia produce mapa y lista vacios, nunca error.
type TextSignalExtractor struct{}

func NewTextSignalExtractor() *TextSignalExtractor {
	return &TextSignalExtractor{}
}

// ExtractTraits puntua cada rasgo como min(1, hits/3).
func (e *TextSignalExtractor) ExtractTraits(bio string) map[string]float64 {
	traits := make(map[string]float64)
	if strings.TrimSpace(bio) == "" {
		return traits
	}

	bioLower := strings.ToLower(bio)
	for trait, keywords := range traitKeywords {
		hits := 0
		for _, keyword := range keywords {
			if strings.Contains(bioLower, keyword) {
				hits++
			}
		}
		traits[trait] = math.Min(1, float64(hits)/3)
	}
	return traits
}

// ExtractValues devuelve los tags de valores presentes en la bio, ordenados.
func (e *TextSignalExtractor) ExtractValues(bio string) []string {
	if strings.TrimSpace(bio) == "" {
		return nil
	}

	bioLower := strings.ToLower(bio)
	var values []string
	for value, keywords := range valueKeywords {
		for _, keyword := range keywords {
			if strings.Contains(bioLower, keyword) {
				values = append(values, value)
				break
			}
		}
	}
	sort.Strings(values)
	return values
}

// PersonalityCompatibility combina rasgos evaluados de ambos usuarios.
// Default 0.5 cuando ninguno tiene rasgos computados.
func (e *TextSignalExtractor) PersonalityCompatibility(traitsA, traitsB map[string]float64) float64 {
	total := 0.0
	count := 0

	for _, trait := range similarityTraits {
		a, okA := traitsA[trait]
		b, okB := traitsB[trait]
		if !okA || !okB {
			continue
		}
		total += 1 - math.Abs(a-b)
		count++
	}

	for _, trait := range complementaryTraits {
		a, okA := traitsA[trait]
		b, okB := traitsB[trait]
		if !okA || !okB {
			continue
		}
		// La diferencia optima ronda 0.5.
		diff := math.Abs(a - b)
		total += 1 - math.Abs(diff-0.5)*2
		count++
	}

	if count == 0 {
		return 0.5
	}
	return total / float64(count)
}

// SharedValuesScore es Jaccard sobre los tags de valores; 0.5 si alguna
// lista esta vacia.
func (e *TextSignalExtractor) SharedValuesScore(valuesA, valuesB []string) float64 {
	if len(valuesA) == 0 || len(valuesB) == 0 {
		return 0.5
	}

	setA := toSet(valuesA)
	shared := 0
	union := len(setA)
	for _, v := range valuesB {
		if _, ok := setA[v]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// SharedValues devuelve la interseccion de tags, preservando el orden de A.
func (e *TextSignalExtractor) SharedValues(valuesA, valuesB []string) []string {
	setB := toSet(valuesB)
	var shared []string
	for _, v := range valuesA {
		if _, ok := setB[v]; ok {
			shared = append(shared, v)
		}
	}
	return shared
}

// Embedding proyecta los rasgos al vocabulario fijo para persistirlos como
// vector y buscar perfiles similares.
func (e *TextSignalExtractor) Embedding(traits map[string]float64) pgvector.Vector {
	vec := make([]float32, len(traitVocabulary))
	for i, trait := range traitVocabulary {
		vec[i] = float32(traits[trait])
	}
	return pgvector.NewVector(vec)
}

// PairInsight resume en una frase la afinidad de rasgos y valores de un par.
func (e *TextSignalExtractor) PairInsight(traitsA, traitsB map[string]float64, valuesA, valuesB []string) string {
	var insights []string

	if traitsA["creativity"] > 0.7 && traitsB["creativity"] > 0.7 {
		insights = append(insights, "Both highly creative - expect innovative collaborations")
	}
	if traitsA["extraversion"] > 0.7 && traitsB["extraversion"] < 0.3 {
		insights = append(insights, "Complementary social styles - one leads, one supports")
	}
	if shared := e.SharedValues(valuesA, valuesB); len(shared) > 2 {
		insights = append(insights, "Strong value alignment in: "+strings.Join(shared, ", "))
	}
	if traitsA["collaboration"] > 0.6 && traitsB["collaboration"] > 0.6 {
		insights = append(insights, "Both are team players - great co-creation potential")
	}

	return strings.Join(insights, ". ")
}
