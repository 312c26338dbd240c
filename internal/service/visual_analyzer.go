package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cocreate-match/internal/domain"
	"cocreate-match/internal/vision"
)

var activeActivities = map[string]struct{}{
	"hiking": {}, "exercising": {}, "dancing": {}, "traveling": {},
}

var activityLevels = []string{"low", "moderate", "high"}

// VisualAnalyzer agrega la inferencia por foto del proveedor de vision en un
// perfil de estilo de vida y compara perfiles de a pares. La inferencia por
// foto es responsabilidad del vision.Provider inyectado.
type VisualAnalyzer struct {
	provider vision.Provider
}

func NewVisualAnalyzer(provider vision.Provider) *VisualAnalyzer {
	return &VisualAnalyzer{provider: provider}
}

// AnalyzeUserPhotos resume el set de fotos en un VisualProfile. Sin fotos
// devuelve nil (senal ausente); un fallo del backend se propaga para que el
// job de background reintente.
func (v *VisualAnalyzer) AnalyzeUserPhotos(ctx context.Context, photoURLs []string) (*domain.VisualProfile, error) {
	if len(photoURLs) == 0 {
		return nil, nil
	}

	var (
		environments []string
		activities   []string
		socialStyle  = "unknown"
	)
	seenEnv := make(map[string]struct{})
	seenAct := make(map[string]struct{})

	for _, url := range photoURLs {
		analysis, err := v.provider.AnalyzePhoto(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("analyze photo %s: %w", url, err)
		}

		if analysis.Setting != "" {
			if _, ok := seenEnv[analysis.Setting]; !ok {
				seenEnv[analysis.Setting] = struct{}{}
				environments = append(environments, analysis.Setting)
			}
		}
		for _, activity := range analysis.Activities {
			if _, ok := seenAct[activity]; !ok {
				seenAct[activity] = struct{}{}
				activities = append(activities, activity)
			}
		}
		if analysis.PeopleCount == "group" {
			socialStyle = "social"
		} else if socialStyle == "unknown" {
			socialStyle = "independent"
		}
	}

	profile := &domain.VisualProfile{
		SocialPreference: socialStyle,
		ActivityLevel:    activityLevel(activities),
	}
	if len(activities) > 3 {
		profile.PrimaryActivities = activities[:3]
	} else {
		profile.PrimaryActivities = activities
	}
	if len(environments) > 0 {
		profile.EnvironmentalPreference = environments[0]
	} else {
		profile.EnvironmentalPreference = "varied"
	}
	profile.LifestyleKeywords = lifestyleKeywords(activities, socialStyle, environments)

	return profile, nil
}

func activityLevel(activities []string) string {
	active := 0
	for _, activity := range activities {
		if _, ok := activeActivities[activity]; ok {
			active++
		}
	}
	switch {
	case active >= 2:
		return "high"
	case active == 1:
		return "moderate"
	default:
		return "low"
	}
}

func lifestyleKeywords(activities []string, socialStyle string, environments []string) []string {
	set := toSet(activities)
	var keywords []string

	if _, hiking := set["hiking"]; hiking {
		keywords = append(keywords, "adventurous")
	} else if _, traveling := set["traveling"]; traveling {
		keywords = append(keywords, "adventurous")
	}
	if _, creating := set["creating"]; creating {
		keywords = append(keywords, "creative")
	}
	if socialStyle == "social" {
		keywords = append(keywords, "outgoing")
	}
	for _, env := range environments {
		if env == "nature" {
			keywords = append(keywords, "nature-lover")
			break
		}
	}
	if _, exercising := set["exercising"]; exercising {
		keywords = append(keywords, "active")
	}
	return keywords
}

// Compatibility compara dos perfiles visuales: promedio de actividad
// compartida, afinidad social, entorno y cercania de nivel de actividad.
// Con algun perfil ausente resuelve a 0.5.
func (v *VisualAnalyzer) Compatibility(a, b *domain.VisualProfile) float64 {
	if a == nil || b == nil {
		return 0.5
	}

	score := 0.0
	factors := 0

	shared := sharedActivities(a, b)
	score += float64(len(shared)) / 3
	factors++

	if a.SocialPreference == b.SocialPreference {
		score += 1
	} else if a.SocialPreference != "unknown" && b.SocialPreference != "unknown" {
		// Distintos pero conocidos pueden complementarse.
		score += 0.5
	}
	factors++

	if a.EnvironmentalPreference == b.EnvironmentalPreference {
		score += 1
	}
	factors++

	diff := math.Abs(float64(levelIndex(a.ActivityLevel) - levelIndex(b.ActivityLevel)))
	score += (2 - diff) / 2
	factors++

	return score / float64(factors)
}

// GenerateInsights produce frases cortas sobre lo que comparten ambos
// perfiles visuales.
func (v *VisualAnalyzer) GenerateInsights(a, b *domain.VisualProfile) []string {
	if a == nil || b == nil {
		return nil
	}

	var insights []string

	if shared := sharedActivities(a, b); len(shared) > 0 {
		insights = append(insights, fmt.Sprintf("You both enjoy %s", strings.Join(shared, " and ")))
	}
	if a.SocialPreference == b.SocialPreference {
		if a.SocialPreference == "social" {
			insights = append(insights, "Both love social activities - double dates incoming")
		} else {
			insights = append(insights, "Both value quality time in smaller settings")
		}
	}
	if a.ActivityLevel == b.ActivityLevel {
		insights = append(insights, fmt.Sprintf("Matched energy levels - both %s activity", a.ActivityLevel))
	}

	return insights
}

func sharedActivities(a, b *domain.VisualProfile) []string {
	setB := toSet(b.PrimaryActivities)
	var shared []string
	for _, activity := range a.PrimaryActivities {
		if _, ok := setB[activity]; ok {
			shared = append(shared, activity)
		}
	}
	return shared
}

func levelIndex(level string) int {
	for i, l := range activityLevels {
		if l == level {
			return i
		}
	}
	return 0
}
