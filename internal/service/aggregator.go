package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"cocreate-match/internal/domain"
	"cocreate-match/internal/repository"
)

// Pesos de los componentes del score final; se renormalizan sobre los
// componentes presentes.
const (
	weightBasic       = 0.30
	weightPersonality = 0.25
	weightVisual      = 0.15
	weightInteraction = 0.20
	weightValues      = 0.10
)

// Factor conservador mientras el analisis visual corre en background.
const pendingVisualEstimate = 0.8

// AnalysisEnqueuer es lo minimo que el agregador necesita del scheduler.
type AnalysisEnqueuer interface {
	Enqueue(job domain.AnalysisJob) bool
}

// CompatibilityAggregator combina las senales disponibles en un MatchResult.
// Visual y chat solo se leen del cache: nunca se computan en el request
// path; si faltan y el tier es elegible, se encola el analisis profundo.
type CompatibilityAggregator struct {
	logger       *zap.Logger
	basic        *BasicScorer
	text         *TextSignalExtractor
	cache        AnalysisCache
	scheduler    AnalysisEnqueuer
	traitVectors repository.TraitVectorRepository
}

func NewCompatibilityAggregator(
	logger *zap.Logger,
	basic *BasicScorer,
	text *TextSignalExtractor,
	cache AnalysisCache,
	scheduler AnalysisEnqueuer,
	traitVectors repository.TraitVectorRepository,
) *CompatibilityAggregator {
	return &CompatibilityAggregator{
		logger:       logger,
		basic:        basic,
		text:         text,
		cache:        cache,
		scheduler:    scheduler,
		traitVectors: traitVectors,
	}
}

// ComputeMatch calcula el MatchResult de un par para el tier del viewer.
func (g *CompatibilityAggregator) ComputeMatch(ctx context.Context, userA, userB *domain.UserProfile, tier string) domain.MatchResult {
	pair := domain.NewPairKey(userA.ID, userB.ID)

	basicBreakdown := g.basic.Score(userA, userB)

	scores := struct {
		basic, personality, visual, interaction, values float64
	}{basic: basicBreakdown.Total}

	var personality domain.PersonalityAnalysis
	if userA.Bio != "" && userB.Bio != "" {
		personality = g.analyzePersonality(ctx, pair, userA, userB)
		scores.personality = personality.PersonalityScore
		scores.values = personality.ValuesScore
	}

	var cachedVisual *domain.VisualAnalysis
	visualFromCache := false
	if tier != domain.TierBasic && len(userA.Photos) > 0 && len(userB.Photos) > 0 {
		cachedVisual = g.cachedVisual(ctx, pair)
		if cachedVisual != nil {
			scores.visual = cachedVisual.Score
			visualFromCache = true
		} else {
			// Estimacion conservadora mientras el job corre en background.
			g.scheduler.Enqueue(domain.AnalysisJob{Pair: pair, Type: domain.AnalysisVisual})
			scores.visual = scores.basic * pendingVisualEstimate
		}
	}

	cachedChat := g.cachedChat(ctx, pair)
	if cachedChat != nil {
		scores.interaction = cachedChat.Compatibility / 100
	}

	// Suma ponderada renormalizada sobre los componentes presentes.
	breakdown := domain.ScoreBreakdown{}
	totalScore := 0.0
	totalWeight := 0.0
	apply := func(score, weight float64, component *domain.ComponentScore) {
		component.Score = score
		if score > 0 {
			component.Weight = weight
			totalScore += score * weight
			totalWeight += weight
		}
	}
	apply(scores.basic, weightBasic, &breakdown.Basic)
	apply(scores.personality, weightPersonality, &breakdown.Personality)
	apply(scores.visual, weightVisual, &breakdown.Visual)
	apply(scores.interaction, weightInteraction, &breakdown.Interaction)
	apply(scores.values, weightValues, &breakdown.Values)

	finalScore := 50.0
	if totalWeight > 0 {
		finalScore = totalScore / totalWeight * 100
	}
	finalScore = math.Round(finalScore)

	return domain.MatchResult{
		CandidateID:         userB.ID,
		Score:               finalScore,
		Breakdown:           breakdown,
		Insights:            g.generateInsights(scores.basic, personality, cachedVisual, cachedChat, userA, userB),
		Potential:           assessPotential(finalScore, scores.personality, scores.values),
		UsedPremiumFeatures: visualFromCache || cachedChat != nil,
		LastUpdated:         time.Now().UTC(),
	}
}

// analyzePersonality corre el extractor de texto en forma sincrona y deja el
// resultado en cache y el embedding de rasgos persistido, ambos best effort.
func (g *CompatibilityAggregator) analyzePersonality(ctx context.Context, pair domain.PairKey, userA, userB *domain.UserProfile) domain.PersonalityAnalysis {
	traitsA := g.text.ExtractTraits(userA.Bio)
	traitsB := g.text.ExtractTraits(userB.Bio)
	valuesA := g.text.ExtractValues(userA.Bio)
	valuesB := g.text.ExtractValues(userB.Bio)

	analysis := domain.PersonalityAnalysis{
		PersonalityScore: g.text.PersonalityCompatibility(traitsA, traitsB),
		ValuesScore:      g.text.SharedValuesScore(valuesA, valuesB),
		SharedValues:     g.text.SharedValues(valuesA, valuesB),
		TraitsA:          traitsA,
		TraitsB:          traitsB,
		Insight:          g.text.PairInsight(traitsA, traitsB, valuesA, valuesB),
	}

	if payload, err := json.Marshal(analysis); err == nil {
		if err := g.cache.Put(ctx, pair, domain.AnalysisPersonality, payload); err != nil {
			g.logger.Warn("cache personality analysis failed", zap.String("pair", pair.String()), zap.Error(err))
		}
	}

	if g.traitVectors != nil {
		if err := g.traitVectors.Upsert(ctx, userA.ID, g.text.Embedding(traitsA)); err != nil {
			g.logger.Warn("upsert trait vector failed", zap.String("user_id", userA.ID), zap.Error(err))
		}
		if err := g.traitVectors.Upsert(ctx, userB.ID, g.text.Embedding(traitsB)); err != nil {
			g.logger.Warn("upsert trait vector failed", zap.String("user_id", userB.ID), zap.Error(err))
		}
	}

	return analysis
}

// SimilarByTraits busca los k usuarios con el vector de rasgos mas cercano
// al del perfil. Sin store de vectores o sin bio devuelve lista vacia.
func (g *CompatibilityAggregator) SimilarByTraits(ctx context.Context, profile *domain.UserProfile, k int) ([]string, error) {
	if g.traitVectors == nil || profile.Bio == "" {
		return nil, nil
	}
	embedding := g.text.Embedding(g.text.ExtractTraits(profile.Bio))
	return g.traitVectors.SearchSimilar(ctx, embedding, profile.ID, k)
}

func (g *CompatibilityAggregator) cachedVisual(ctx context.Context, pair domain.PairKey) *domain.VisualAnalysis {
	payload, ok, err := g.cache.Get(ctx, pair, domain.AnalysisVisual)
	if err != nil {
		g.logger.Warn("read visual cache failed", zap.String("pair", pair.String()), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var analysis domain.VisualAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		// Payload corrupto se trata como cache miss.
		return nil
	}
	return &analysis
}

func (g *CompatibilityAggregator) cachedChat(ctx context.Context, pair domain.PairKey) *domain.ChatAnalysis {
	payload, ok, err := g.cache.Get(ctx, pair, domain.AnalysisChat)
	if err != nil {
		g.logger.Warn("read chat cache failed", zap.String("pair", pair.String()), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var analysis domain.ChatAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil
	}
	return &analysis
}

// generateInsights arma hasta 3 frases con prioridad fija:
// personalidad > valores compartidos > visual > chat > basico.
func (g *CompatibilityAggregator) generateInsights(
	basicScore float64,
	personality domain.PersonalityAnalysis,
	visual *domain.VisualAnalysis,
	chat *domain.ChatAnalysis,
	userA, userB *domain.UserProfile,
) []string {
	var insights []string

	if personality.PersonalityScore > 0.8 {
		insights = append(insights, "Exceptional personality match")
	} else if personality.PersonalityScore > 0.6 {
		insights = append(insights, "Compatible thinking styles")
	}

	if len(personality.SharedValues) > 2 {
		insights = append(insights, "Share values: "+strings.Join(personality.SharedValues[:2], ", "))
	}

	if visual != nil && len(visual.Insights) > 0 {
		insights = append(insights, visual.Insights[0])
	}

	if chat != nil && len(chat.Insights) > 0 {
		insights = append(insights, chat.Insights[0])
	}

	if basicScore > 0.7 {
		if shared := sharedInterestList(userA.Interests, userB.Interests); len(shared) > 0 {
			insights = append(insights, fmt.Sprintf("Both love %s", shared[0]))
		}
	}

	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

func sharedInterestList(a, b []string) []string {
	setB := toSet(b)
	var shared []string
	for _, interest := range a {
		if _, ok := setB[interest]; ok {
			shared = append(shared, interest)
		}
	}
	return shared
}

// assessPotential etiqueta el potencial del par segun score y componentes.
func assessPotential(score, personalityScore, valuesScore float64) string {
	switch {
	case score >= 85 && personalityScore > 0.8:
		return "Exceptional - Rare compatibility"
	case score >= 75:
		return "Excellent - Strong potential"
	case score >= 60 && valuesScore > 0.7:
		return "Good - Aligned values"
	case score >= 50:
		return "Moderate - Worth exploring"
	default:
		return "Low - Different paths"
	}
}
