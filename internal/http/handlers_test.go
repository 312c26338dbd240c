package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"cocreate-match/internal/domain"
	"cocreate-match/internal/repository"
	"cocreate-match/internal/service"
	"cocreate-match/internal/vision"
)

type mockAccountRepo struct {
	accounts map[string]domain.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]domain.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account domain.Account) error {
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return domain.Account{}, repository.ErrNotFound
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return domain.Account{}, repository.ErrNotFound
	}
	return account, nil
}

type mockProfileRepo struct {
	profiles   map[string]domain.UserProfile
	candidates []domain.UserProfile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.UserProfile)}
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (domain.UserProfile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return domain.UserProfile{}, repository.ErrNotFound
	}
	return profile, nil
}

func (m *mockProfileRepo) ListCandidates(_ context.Context, _ domain.UserProfile, _ []string, _, _ int) ([]domain.UserProfile, error) {
	return m.candidates, nil
}

type mockMatchRepo struct {
	matches map[string]domain.Match
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{matches: make(map[string]domain.Match)}
}

func (m *mockMatchRepo) Create(_ context.Context, match domain.Match) error {
	m.matches[match.ID] = match
	return nil
}

func (m *mockMatchRepo) GetByID(_ context.Context, id string) (domain.Match, error) {
	match, ok := m.matches[id]
	if !ok {
		return domain.Match{}, repository.ErrNotFound
	}
	return match, nil
}

func (m *mockMatchRepo) ListUserIDsMatchedWith(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (m *mockMatchRepo) UpdateCompatibilityScore(_ context.Context, id string, score float64) error {
	match, ok := m.matches[id]
	if !ok {
		return repository.ErrNotFound
	}
	match.CompatibilityScore = &score
	m.matches[id] = match
	return nil
}

type mockMessageRepo struct {
	byMatch map[string][]domain.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{byMatch: make(map[string][]domain.Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, message domain.Message) error {
	m.byMatch[message.MatchID] = append(m.byMatch[message.MatchID], message)
	return nil
}

func (m *mockMessageRepo) ListByMatchID(_ context.Context, matchID string, limit int) ([]domain.Message, error) {
	messages := m.byMatch[matchID]
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (m *mockMessageRepo) CountByMatchID(_ context.Context, matchID string) (int, error) {
	return len(m.byMatch[matchID]), nil
}

type mockPhotoRepo struct{}

func (m *mockPhotoRepo) ListByUserID(_ context.Context, _ string) ([]domain.Photo, error) {
	return nil, nil
}

type mockSubscriptionRepo struct {
	tier string
}

func (m *mockSubscriptionRepo) GetTier(_ context.Context, _ string) (string, error) {
	return m.tier, nil
}

type mockTraitVectorRepo struct {
	similar []string
}

func (m *mockTraitVectorRepo) Upsert(_ context.Context, _ string, _ pgvector.Vector) error {
	return nil
}

func (m *mockTraitVectorRepo) SearchSimilar(_ context.Context, _ pgvector.Vector, _ string, _ int) ([]string, error) {
	return m.similar, nil
}

// handlerFixture arma el stack completo de servicios sobre mocks. El
// scheduler no se arranca: los jobs quedan en queued.
type handlerFixture struct {
	router   *gin.Engine
	jwtSvc   *service.JWTService
	profiles *mockProfileRepo
	matches  *mockMatchRepo
	messages *mockMessageRepo
	accounts *mockAccountRepo
	traits   *mockTraitVectorRepo
}

func newHandlerFixture(tier string) *handlerFixture {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	profiles := newMockProfileRepo()
	matches := newMockMatchRepo()
	messages := newMockMessageRepo()
	accounts := newMockAccountRepo()
	traits := &mockTraitVectorRepo{}
	cache := service.NewMemoryAnalysisCache(time.Minute)

	scheduler := service.NewAnalysisScheduler(
		logger,
		cache,
		profiles,
		&mockPhotoRepo{},
		messages,
		matches,
		service.NewVisualAnalyzer(vision.NewMockProvider()),
		service.NewConversationAnalyzer(),
		service.SchedulerOptions{Workers: 1},
	)
	aggregator := service.NewCompatibilityAggregator(logger, service.NewBasicScorer(), service.NewTextSignalExtractor(), cache, scheduler, traits)
	ranker := service.NewMatchRanker(logger, aggregator, scheduler, 4, time.Millisecond)

	jwtSvc := service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	accountSvc := service.NewAccountService(logger, accounts)
	matchSvc := service.NewMatchService(logger, profiles, matches, &mockSubscriptionRepo{tier: tier}, accounts, cache, aggregator, ranker, scheduler, nil)
	messageSvc := service.NewMessageService(logger, messages, matches, scheduler, 20)

	router := NewRouter(
		logger,
		jwtSvc,
		NewAccountHandler(logger, accountSvc, jwtSvc),
		NewMatchHandler(logger, matchSvc),
		NewMessageHandler(logger, messageSvc),
	)

	return &handlerFixture{
		router:   router,
		jwtSvc:   jwtSvc,
		profiles: profiles,
		matches:  matches,
		messages: messages,
		accounts: accounts,
		traits:   traits,
	}
}

func (f *handlerFixture) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	pair, err := f.jwtSvc.GeneratePair(domain.Account{ID: userID, Email: userID + "@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return pair.AccessToken
}

func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}
