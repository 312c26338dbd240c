package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"cocreate-match/internal/domain"
)

// Par base: intereses identicos, sin historial ni ubicacion. El scorer
// estructurado da 1*.25 + 0.5*.25 + 0*.20 + 0.5*.15 + 0*.15 = 0.45.
func aggregatorPair() (domain.UserProfile, domain.UserProfile) {
	a := domain.UserProfile{ID: "u1", Interests: []string{"music"}}
	b := domain.UserProfile{ID: "u2", Interests: []string{"music"}}
	return a, b
}

func newTestAggregator(cache AnalysisCache, enqueuer AnalysisEnqueuer, traits *mockTraitVectorRepo) *CompatibilityAggregator {
	return NewCompatibilityAggregator(
		zap.NewNop(),
		NewBasicScorer(),
		NewTextSignalExtractor(),
		cache,
		enqueuer,
		traits,
	)
}

func TestAggregator_BasicOnly(t *testing.T) {
	enqueuer := newMockEnqueuer()
	agg := newTestAggregator(NewMemoryAnalysisCache(time.Minute), enqueuer, nil)

	a, b := aggregatorPair()
	result := agg.ComputeMatch(context.Background(), &a, &b, domain.TierBasic)

	// Solo el componente basico esta presente: 0.45 * 100 renormalizado.
	if result.Score != 45 {
		t.Fatalf("Score = %v, want 45", result.Score)
	}
	if !almostEqual(result.Breakdown.Basic.Score, 0.45) || !almostEqual(result.Breakdown.Basic.Weight, 0.30) {
		t.Fatalf("basic component = %+v", result.Breakdown.Basic)
	}
	if result.Breakdown.Visual.Weight != 0 || result.Breakdown.Interaction.Weight != 0 {
		t.Fatalf("absent components must carry zero weight: %+v", result.Breakdown)
	}
	if result.UsedPremiumFeatures {
		t.Fatalf("basic tier must not report premium features")
	}
	if result.Potential != "Low - Different paths" {
		t.Fatalf("Potential = %q", result.Potential)
	}
	if len(enqueuer.queued()) != 0 {
		t.Fatalf("basic tier must not enqueue deep analysis, got %d jobs", len(enqueuer.queued()))
	}
}

func TestAggregator_PendingVisualUsesEstimate(t *testing.T) {
	enqueuer := newMockEnqueuer()
	agg := newTestAggregator(NewMemoryAnalysisCache(time.Minute), enqueuer, nil)

	a, b := aggregatorPair()
	a.Photos = []string{"a.jpg"}
	b.Photos = []string{"b.jpg"}
	result := agg.ComputeMatch(context.Background(), &a, &b, domain.TierPremium)

	// Visual pendiente: 0.8 * basico = 0.36. Renormalizado sobre
	// basico+visual: (0.45*0.30 + 0.36*0.15) / 0.45 * 100 = 42.
	if result.Score != 42 {
		t.Fatalf("Score = %v, want 42", result.Score)
	}
	if !almostEqual(result.Breakdown.Visual.Score, 0.36) {
		t.Fatalf("visual estimate = %v, want 0.36", result.Breakdown.Visual.Score)
	}
	if result.UsedPremiumFeatures {
		t.Fatalf("pending estimate must not count as premium feature")
	}

	jobs := enqueuer.queued()
	if len(jobs) != 1 {
		t.Fatalf("expected one visual job, got %d", len(jobs))
	}
	if jobs[0].Type != domain.AnalysisVisual || jobs[0].Pair != domain.NewPairKey("u1", "u2") {
		t.Fatalf("unexpected job %+v", jobs[0])
	}
}

func TestAggregator_ReadsCachedVisualAndChat(t *testing.T) {
	cache := NewMemoryAnalysisCache(time.Minute)
	pair := domain.NewPairKey("u1", "u2")

	visualPayload, _ := json.Marshal(domain.VisualAnalysis{
		Score:    0.9,
		Insights: []string{"Shared love of outdoor adventures"},
	})
	if err := cache.Put(context.Background(), pair, domain.AnalysisVisual, visualPayload); err != nil {
		t.Fatalf("seed visual cache: %v", err)
	}
	chatPayload, _ := json.Marshal(domain.ChatAnalysis{
		Compatibility: 80,
		Insights:      []string{"Great conversational chemistry"},
	})
	if err := cache.Put(context.Background(), pair, domain.AnalysisChat, chatPayload); err != nil {
		t.Fatalf("seed chat cache: %v", err)
	}

	enqueuer := newMockEnqueuer()
	agg := newTestAggregator(cache, enqueuer, nil)

	a, b := aggregatorPair()
	a.Photos = []string{"a.jpg"}
	b.Photos = []string{"b.jpg"}
	result := agg.ComputeMatch(context.Background(), &a, &b, domain.TierElite)

	// (0.45*0.30 + 0.9*0.15 + 0.8*0.20) / 0.65 * 100 = 66.15 -> 66.
	if result.Score != 66 {
		t.Fatalf("Score = %v, want 66", result.Score)
	}
	if !almostEqual(result.Breakdown.Visual.Score, 0.9) {
		t.Fatalf("visual from cache = %v", result.Breakdown.Visual.Score)
	}
	if !almostEqual(result.Breakdown.Interaction.Score, 0.8) {
		t.Fatalf("interaction from cache = %v", result.Breakdown.Interaction.Score)
	}
	if !result.UsedPremiumFeatures {
		t.Fatalf("cached deep signals must flag premium features")
	}
	if len(enqueuer.queued()) != 0 {
		t.Fatalf("cache hit must not re-enqueue, got %d jobs", len(enqueuer.queued()))
	}

	found := false
	for _, insight := range result.Insights {
		if insight == "Shared love of outdoor adventures" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected visual insight surfaced, got %v", result.Insights)
	}
}

func TestAggregator_PersonalityFromBios(t *testing.T) {
	cache := NewMemoryAnalysisCache(time.Minute)
	traits := &mockTraitVectorRepo{}
	agg := newTestAggregator(cache, newMockEnqueuer(), traits)

	a, b := aggregatorPair()
	a.Bio = "I love to create, design and build things"
	b.Bio = "I love to create, design and build things"
	result := agg.ComputeMatch(context.Background(), &a, &b, domain.TierBasic)

	// Bios identicas: rasgos de similitud puntuan 1 y los complementarios 0
	// con gap cero, o sea 4/6. Valores identicos dan Jaccard 1.
	if !almostEqual(result.Breakdown.Personality.Score, 4.0/6.0) {
		t.Fatalf("personality = %v, want %v", result.Breakdown.Personality.Score, 4.0/6.0)
	}
	if !almostEqual(result.Breakdown.Values.Score, 1) {
		t.Fatalf("values = %v, want 1", result.Breakdown.Values.Score)
	}

	// (0.45*0.30 + (2/3)*0.25 + 1*0.10) / 0.65 * 100 = 61.79 -> 62.
	if result.Score != 62 {
		t.Fatalf("Score = %v, want 62", result.Score)
	}
	if result.Potential != "Good - Aligned values" {
		t.Fatalf("Potential = %q", result.Potential)
	}

	// El analisis queda cacheado y los embeddings persistidos.
	if _, ok, _ := cache.Get(context.Background(), domain.NewPairKey("u1", "u2"), domain.AnalysisPersonality); !ok {
		t.Fatalf("expected personality analysis cached")
	}
	for _, id := range []string{"u1", "u2"} {
		vec, ok := traits.upserts[id]
		if !ok {
			t.Fatalf("expected trait vector upsert for %s", id)
		}
		values := vec.Slice()
		if len(values) != len(traitVocabulary) {
			t.Fatalf("embedding dims = %d, want %d", len(values), len(traitVocabulary))
		}
		// creativity ocupa la posicion 5 del vocabulario.
		if values[5] != 1 {
			t.Fatalf("creativity dim = %v, want 1", values[5])
		}
	}
}

func TestAggregator_ScoreWithinRange(t *testing.T) {
	agg := newTestAggregator(NewMemoryAnalysisCache(time.Minute), newMockEnqueuer(), nil)

	a := domain.UserProfile{ID: "u1"}
	b := domain.UserProfile{ID: "u2"}
	result := agg.ComputeMatch(context.Background(), &a, &b, domain.TierBasic)

	if result.Score < 0 || result.Score > 100 {
		t.Fatalf("Score = %v out of range", result.Score)
	}
}
