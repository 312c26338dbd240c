package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cocreate-match/internal/domain"
)

const (
	defaultRankLimit       = 10
	defaultRankConcurrency = 8
	boostMultiplier        = 1.2
	deepAnalysisTopN       = 5
	defaultStagger         = 5 * time.Second
)

// RankOptions parametriza un pedido de ranking.
type RankOptions struct {
	Limit int
	Tier  string
}

// RankedMatch es un candidato ya puntuado y ordenado.
type RankedMatch struct {
	Profile domain.UserProfile `json:"profile"`
	Result  domain.MatchResult `json:"result"`
}

// MatchRanker puntua candidatos en paralelo acotado, aplica boost y ordena
// segun el tier del viewer.
type MatchRanker struct {
	logger         *zap.Logger
	aggregator     *CompatibilityAggregator
	scheduler      AnalysisEnqueuer
	maxConcurrency int
	stagger        time.Duration
}

func NewMatchRanker(logger *zap.Logger, aggregator *CompatibilityAggregator, scheduler AnalysisEnqueuer, maxConcurrency int, stagger time.Duration) *MatchRanker {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultRankConcurrency
	}
	if stagger <= 0 {
		stagger = defaultStagger
	}
	return &MatchRanker{
		logger:         logger,
		aggregator:     aggregator,
		scheduler:      scheduler,
		maxConcurrency: maxConcurrency,
		stagger:        stagger,
	}
}

// Rank filtra por edad, puntua cada candidato via el agregador, aplica el
// boost vigente y devuelve la lista ordenada y truncada. Nunca espera a los
// jobs de background: el score con estimaciones ya es usable.
func (r *MatchRanker) Rank(ctx context.Context, viewer *domain.UserProfile, candidates []domain.UserProfile, opts RankOptions) []RankedMatch {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultRankLimit
	}
	tier := opts.Tier
	if tier == "" {
		tier = domain.TierBasic
	}

	now := time.Now().UTC()

	// Filtro de edad antes de puntuar: no gastar scoring en descartes.
	eligible := make([]domain.UserProfile, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == viewer.ID {
			continue
		}
		if !r.ageEligible(viewer, &candidate, now) {
			continue
		}
		eligible = append(eligible, candidate)
	}

	// Cada computo solo lee sus dos perfiles y el cache: paralelizable.
	results := make([]RankedMatch, len(eligible))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.maxConcurrency)
	for i := range eligible {
		i := i
		eg.Go(func() error {
			candidate := eligible[i]
			result := r.aggregator.ComputeMatch(egCtx, viewer, &candidate, tier)

			if candidate.BoostActive(now) {
				result.Boosted = true
				result.Score = math.Min(result.Score*boostMultiplier, 100)
			}

			results[i] = RankedMatch{Profile: candidate, Result: result}
			return nil
		})
	}
	// Los workers no devuelven error; Wait solo sincroniza.
	_ = eg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Result, results[j].Result
		if tier != domain.TierBasic && a.UsedPremiumFeatures != b.UsedPremiumFeatures {
			return a.UsedPremiumFeatures
		}
		if a.Boosted != b.Boosted {
			return a.Boosted
		}
		return a.Score > b.Score
	})

	if tier != domain.TierBasic {
		r.queueDeepAnalysis(viewer.ID, results)
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (r *MatchRanker) ageEligible(viewer, candidate *domain.UserProfile, now time.Time) bool {
	ageRange := viewer.Preferences.AgeRange
	if ageRange.Min == 0 && ageRange.Max == 0 {
		return true
	}
	age := candidate.Age(now)
	if ageRange.Min > 0 && age < ageRange.Min {
		return false
	}
	if ageRange.Max > 0 && age > ageRange.Max {
		return false
	}
	return true
}

// queueDeepAnalysis encola analisis visual para los mejores candidatos,
// escalonado para acotar el trabajo caro concurrente.
func (r *MatchRanker) queueDeepAnalysis(viewerID string, ranked []RankedMatch) {
	top := ranked
	if len(top) > deepAnalysisTopN {
		top = top[:deepAnalysisTopN]
	}

	for i, match := range top {
		enqueued := r.scheduler.Enqueue(domain.AnalysisJob{
			Pair:  domain.NewPairKey(viewerID, match.Profile.ID),
			Type:  domain.AnalysisVisual,
			Delay: time.Duration(i) * r.stagger,
		})
		if enqueued {
			r.logger.Debug("deep analysis queued",
				zap.String("viewer_id", viewerID),
				zap.String("candidate_id", match.Profile.ID),
			)
		}
	}
}
