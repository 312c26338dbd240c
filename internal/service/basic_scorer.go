package service

import (
	"math"

	"cocreate-match/internal/domain"
)

// Pesos fijos del scorer estructurado; suman 1.
const (
	weightSharedInterests    = 0.25
	weightCollaborationStyle = 0.25
	weightContributionScore  = 0.20
	weightActivityAlignment  = 0.15
	weightProximityScore     = 0.15
)

const defaultMaxDistanceKm = 50

// BasicScorer calcula compatibilidad a partir de los campos estructurados
// del perfil: intereses, historial de contribucion y ubicacion. Es
// determinista y no tiene efectos secundarios.
type BasicScorer struct{}

func NewBasicScorer() *BasicScorer {
	return &BasicScorer{}
}

// Score devuelve el desglose por componente (todo en [0,1]) y el total
// ponderado en Total.
func (s *BasicScorer) Score(a, b *domain.UserProfile) domain.BasicBreakdown {
	breakdown := domain.BasicBreakdown{
		SharedInterests:    s.sharedInterests(a, b),
		CollaborationStyle: s.collaborationStyle(a, b),
		ContributionScore:  s.contributionCompatibility(a, b),
		ActivityAlignment:  s.activityAlignment(a, b),
		ProximityScore:     s.proximity(a, b),
	}

	breakdown.Total = breakdown.SharedInterests*weightSharedInterests +
		breakdown.CollaborationStyle*weightCollaborationStyle +
		breakdown.ContributionScore*weightContributionScore +
		breakdown.ActivityAlignment*weightActivityAlignment +
		breakdown.ProximityScore*weightProximityScore

	return breakdown
}

// sharedInterests es el indice de Jaccard de los sets de intereses.
// Union vacia resuelve a 0, no a NaN.
func (s *BasicScorer) sharedInterests(a, b *domain.UserProfile) float64 {
	setA := toSet(a.Interests)
	setB := toSet(b.Interests)

	union := len(setA)
	intersection := 0
	for interest := range setB {
		if _, ok := setA[interest]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// collaborationStyle compara el promedio de valores del historial.
// Sin historial de alguno de los dos: default 0.5.
func (s *BasicScorer) collaborationStyle(a, b *domain.UserProfile) float64 {
	if len(a.ContributionHistory) == 0 || len(b.ContributionHistory) == 0 {
		return 0.5
	}
	diff := math.Abs(avgContribution(a.ContributionHistory) - avgContribution(b.ContributionHistory))
	return clamp01(1 - diff/100)
}

// contributionCompatibility premia scores altos y parejos de co-creacion.
func (s *BasicScorer) contributionCompatibility(a, b *domain.UserProfile) float64 {
	avg := (a.CoCreationScore + b.CoCreationScore) / 2
	diff := math.Abs(a.CoCreationScore - b.CoCreationScore)
	return clamp01(avg / 100 * (1 - diff/100))
}

// activityAlignment es la fraccion de tipos de actividad en comun.
// Sin historial: default 0.5.
func (s *BasicScorer) activityAlignment(a, b *domain.UserProfile) float64 {
	typesA := contributionTypes(a.ContributionHistory)
	typesB := contributionTypes(b.ContributionHistory)

	union := len(typesA)
	common := 0
	for t := range typesB {
		if _, ok := typesA[t]; ok {
			common++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0.5
	}
	return float64(common) / float64(union)
}

// proximity es 1 - distancia/maxDistancia, acotado en 0. Sin ubicacion de
// alguno de los dos: 0. maxDistancia es el mayor de ambos preferidos.
func (s *BasicScorer) proximity(a, b *domain.UserProfile) float64 {
	if a.Location == nil || b.Location == nil {
		return 0
	}

	distance := haversineKm(a.Location.Lat, a.Location.Lng, b.Location.Lat, b.Location.Lng)

	maxDistance := math.Max(preferredDistance(a), preferredDistance(b))
	return math.Max(0, 1-distance/maxDistance)
}

func preferredDistance(p *domain.UserProfile) float64 {
	if p.Preferences.MaxDistanceKm > 0 {
		return p.Preferences.MaxDistanceKm
	}
	return defaultMaxDistanceKm
}

// haversineKm calcula la distancia ortodromica en km (radio terrestre 6371).
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func avgContribution(history []domain.ContributionEvent) float64 {
	if len(history) == 0 {
		return 0
	}
	sum := 0.0
	for _, event := range history {
		sum += event.Value
	}
	return sum / float64(len(history))
}

func contributionTypes(history []domain.ContributionEvent) map[string]struct{} {
	types := make(map[string]struct{}, len(history))
	for _, event := range history {
		if event.Type != "" {
			types[event.Type] = struct{}{}
		}
	}
	return types
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
