package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cocreate-match/internal/domain"
	"cocreate-match/internal/email"
	"cocreate-match/internal/repository"
)

// MatchService es la fachada del motor: ranking, score de a pares,
// explicaciones y encolado de analisis profundo.
type MatchService struct {
	logger        *zap.Logger
	profiles      repository.ProfileRepository
	matches       repository.MatchRepository
	subscriptions repository.SubscriptionRepository
	accounts      repository.AccountRepository
	cache         AnalysisCache
	aggregator    *CompatibilityAggregator
	ranker        *MatchRanker
	scheduler     *AnalysisScheduler
	emailSender   email.Sender
}

func NewMatchService(
	logger *zap.Logger,
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	subscriptions repository.SubscriptionRepository,
	accounts repository.AccountRepository,
	cache AnalysisCache,
	aggregator *CompatibilityAggregator,
	ranker *MatchRanker,
	scheduler *AnalysisScheduler,
	emailSender email.Sender,
) *MatchService {
	return &MatchService{
		logger:        logger,
		profiles:      profiles,
		matches:       matches,
		subscriptions: subscriptions,
		accounts:      accounts,
		cache:         cache,
		aggregator:    aggregator,
		ranker:        ranker,
		scheduler:     scheduler,
		emailSender:   emailSender,
	}
}

// RankCandidates arma la lista de candidatos del viewer y la devuelve
// ordenada por el ranker.
func (s *MatchService) RankCandidates(ctx context.Context, viewerID string, limit, offset int) ([]RankedMatch, error) {
	viewer, err := s.profiles.GetByID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get viewer profile: %w", err)
	}

	tier, err := s.subscriptions.GetTier(ctx, viewerID)
	if err != nil {
		s.logger.Warn("tier lookup failed, assuming basic", zap.String("user_id", viewerID), zap.Error(err))
		tier = domain.TierBasic
	}

	swiped, err := s.matches.ListUserIDsMatchedWith(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list matched users: %w", err)
	}

	if limit <= 0 {
		limit = defaultRankLimit
	}
	// Se pide de mas porque el filtro de edad descarta despues.
	candidates, err := s.profiles.ListCandidates(ctx, viewer, swiped, limit*3, offset)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return s.ranker.Rank(ctx, &viewer, candidates, RankOptions{Limit: limit, Tier: tier}), nil
}

// ComputeMatch puntua un par puntual usando el tier del primer usuario.
func (s *MatchService) ComputeMatch(ctx context.Context, userAID, userBID string) (domain.MatchResult, error) {
	userA, err := s.profiles.GetByID(ctx, userAID)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("get profile %s: %w", userAID, err)
	}
	userB, err := s.profiles.GetByID(ctx, userBID)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("get profile %s: %w", userBID, err)
	}

	tier, err := s.subscriptions.GetTier(ctx, userAID)
	if err != nil {
		s.logger.Warn("tier lookup failed, assuming basic", zap.String("user_id", userAID), zap.Error(err))
		tier = domain.TierBasic
	}

	return s.aggregator.ComputeMatch(ctx, &userA, &userB, tier), nil
}

// SimilarProfiles devuelve perfiles con rasgos de personalidad parecidos a
// los del usuario, como fuente adicional de descubrimiento. Los IDs sin
// perfil vigente se saltean.
func (s *MatchService) SimilarProfiles(ctx context.Context, userID string, k int) ([]domain.UserProfile, error) {
	if k <= 0 {
		k = defaultRankLimit
	}
	viewer, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get viewer profile: %w", err)
	}

	ids, err := s.aggregator.SimilarByTraits(ctx, &viewer, k)
	if err != nil {
		return nil, fmt.Errorf("search similar traits: %w", err)
	}

	profiles := make([]domain.UserProfile, 0, len(ids))
	for _, id := range ids {
		profile, err := s.profiles.GetByID(ctx, id)
		if err != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// MatchExplanation es la vista del analisis cacheado de un par. Processing
// marca los tipos cuyo job sigue en vuelo.
type MatchExplanation struct {
	Personality *domain.PersonalityAnalysis `json:"personality,omitempty"`
	Visual      *domain.VisualAnalysis      `json:"visual,omitempty"`
	Chat        *domain.ChatAnalysis        `json:"chat,omitempty"`
	Processing  []string                    `json:"processing,omitempty"`
	Premium     bool                        `json:"premium"`
}

// GetExplanation devuelve lo que haya en cache para el par, marcando como
// "processing" los analisis con job en queued/running/retrying.
func (s *MatchService) GetExplanation(ctx context.Context, userID, candidateID string) (MatchExplanation, error) {
	pair := domain.NewPairKey(userID, candidateID)
	explanation := MatchExplanation{}

	if payload, ok, err := s.cache.Get(ctx, pair, domain.AnalysisPersonality); err == nil && ok {
		var analysis domain.PersonalityAnalysis
		if json.Unmarshal(payload, &analysis) == nil {
			explanation.Personality = &analysis
		}
	}
	if payload, ok, err := s.cache.Get(ctx, pair, domain.AnalysisVisual); err == nil && ok {
		var analysis domain.VisualAnalysis
		if json.Unmarshal(payload, &analysis) == nil {
			explanation.Visual = &analysis
		}
	}
	if payload, ok, err := s.cache.Get(ctx, pair, domain.AnalysisChat); err == nil && ok {
		var analysis domain.ChatAnalysis
		if json.Unmarshal(payload, &analysis) == nil {
			explanation.Chat = &analysis
		}
	}

	for _, analysisType := range []string{domain.AnalysisVisual, domain.AnalysisChat} {
		switch s.scheduler.Status(pair, analysisType) {
		case domain.JobQueued, domain.JobRunning, domain.JobRetrying:
			explanation.Processing = append(explanation.Processing, analysisType)
		}
	}

	explanation.Premium = explanation.Visual != nil || explanation.Chat != nil
	return explanation, nil
}

// EnqueueDeepAnalysis encola un analisis visual o de chat para el par del
// match. Devuelve false si ya habia un job en vuelo.
func (s *MatchService) EnqueueDeepAnalysis(ctx context.Context, matchID, analysisType string) (bool, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return false, fmt.Errorf("get match %s: %w", matchID, err)
	}

	job := domain.AnalysisJob{
		Pair:    domain.NewPairKey(match.User1ID, match.User2ID),
		MatchID: match.ID,
		Type:    analysisType,
	}
	return s.scheduler.Enqueue(job), nil
}

// CreateMatch registra un match mutuo y notifica por correo best effort.
func (s *MatchService) CreateMatch(ctx context.Context, user1ID, user2ID string) (domain.Match, error) {
	now := time.Now().UTC()
	match := domain.Match{
		ID:        uuid.NewString(),
		User1ID:   user1ID,
		User2ID:   user2ID,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return domain.Match{}, fmt.Errorf("create match: %w", err)
	}

	if s.emailSender != nil {
		s.notifyMatch(ctx, user1ID, user2ID)
		s.notifyMatch(ctx, user2ID, user1ID)
	}
	return match, nil
}

func (s *MatchService) notifyMatch(ctx context.Context, toUserID, otherUserID string) {
	account, err := s.accounts.GetByID(ctx, toUserID)
	if err != nil {
		return
	}
	other, err := s.profiles.GetByID(ctx, otherUserID)
	if err != nil {
		return
	}
	if err := s.emailSender.SendMatchNotification(ctx, account.Email, other.Name); err != nil {
		s.logger.Debug("match notification skipped", zap.String("user_id", toUserID), zap.Error(err))
	}
}
