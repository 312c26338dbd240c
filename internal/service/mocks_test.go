package service

import (
	"context"
	"sync"

	pgvector "github.com/pgvector/pgvector-go"

	"cocreate-match/internal/domain"
	"cocreate-match/internal/repository"
)

type mockProfileRepo struct {
	profiles   map[string]domain.UserProfile
	candidates []domain.UserProfile
	err        error
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (domain.UserProfile, error) {
	if m.err != nil {
		return domain.UserProfile{}, m.err
	}
	profile, ok := m.profiles[id]
	if !ok {
		return domain.UserProfile{}, repository.ErrNotFound
	}
	return profile, nil
}

func (m *mockProfileRepo) ListCandidates(_ context.Context, _ domain.UserProfile, _ []string, _, _ int) ([]domain.UserProfile, error) {
	return m.candidates, m.err
}

type mockPhotoRepo struct {
	photos map[string][]domain.Photo
	err    error
}

func (m *mockPhotoRepo) ListByUserID(_ context.Context, userID string) ([]domain.Photo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.photos[userID], nil
}

type mockMessageRepo struct {
	mu       sync.Mutex
	byMatch  map[string][]domain.Message
	countErr error
	listErr  error
}

func (m *mockMessageRepo) Create(_ context.Context, message domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byMatch == nil {
		m.byMatch = make(map[string][]domain.Message)
	}
	m.byMatch[message.MatchID] = append(m.byMatch[message.MatchID], message)
	return nil
}

func (m *mockMessageRepo) ListByMatchID(_ context.Context, matchID string, limit int) ([]domain.Message, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	messages := m.byMatch[matchID]
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (m *mockMessageRepo) CountByMatchID(_ context.Context, matchID string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byMatch[matchID]), nil
}

type mockMatchRepo struct {
	mu      sync.Mutex
	matches map[string]domain.Match
	scores  map[string]float64
	created []domain.Match
}

func (m *mockMatchRepo) Create(_ context.Context, match domain.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.matches == nil {
		m.matches = make(map[string]domain.Match)
	}
	m.matches[match.ID] = match
	m.created = append(m.created, match)
	return nil
}

func (m *mockMatchRepo) GetByID(_ context.Context, id string) (domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	if !ok {
		return domain.Match{}, repository.ErrNotFound
	}
	return match, nil
}

func (m *mockMatchRepo) ListUserIDsMatchedWith(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, match := range m.matches {
		if match.User1ID == userID {
			ids = append(ids, match.User2ID)
		} else if match.User2ID == userID {
			ids = append(ids, match.User1ID)
		}
	}
	return ids, nil
}

func (m *mockMatchRepo) UpdateCompatibilityScore(_ context.Context, id string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scores == nil {
		m.scores = make(map[string]float64)
	}
	m.scores[id] = score
	return nil
}

func (m *mockMatchRepo) updatedScore(id string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score, ok := m.scores[id]
	return score, ok
}

type mockSubscriptionRepo struct {
	tier string
	err  error
}

func (m *mockSubscriptionRepo) GetTier(_ context.Context, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.tier, nil
}

type mockAccountRepo struct {
	accounts map[string]domain.Account
	created  []domain.Account
	err      error
}

func (m *mockAccountRepo) Create(_ context.Context, account domain.Account) error {
	if m.err != nil {
		return m.err
	}
	if m.accounts == nil {
		m.accounts = make(map[string]domain.Account)
	}
	m.accounts[account.ID] = account
	m.created = append(m.created, account)
	return nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	if m.err != nil {
		return domain.Account{}, m.err
	}
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return domain.Account{}, repository.ErrNotFound
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	if m.err != nil {
		return domain.Account{}, m.err
	}
	account, ok := m.accounts[id]
	if !ok {
		return domain.Account{}, repository.ErrNotFound
	}
	return account, nil
}

type mockTraitVectorRepo struct {
	mu      sync.Mutex
	upserts map[string]pgvector.Vector
	similar []string
	err     error
}

func (m *mockTraitVectorRepo) Upsert(_ context.Context, userID string, embedding pgvector.Vector) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upserts == nil {
		m.upserts = make(map[string]pgvector.Vector)
	}
	m.upserts[userID] = embedding
	return nil
}

func (m *mockTraitVectorRepo) SearchSimilar(_ context.Context, _ pgvector.Vector, _ string, _ int) ([]string, error) {
	return m.similar, m.err
}

type mockEnqueuer struct {
	mu     sync.Mutex
	jobs   []domain.AnalysisJob
	accept bool
}

func newMockEnqueuer() *mockEnqueuer {
	return &mockEnqueuer{accept: true}
}

func (m *mockEnqueuer) Enqueue(job domain.AnalysisJob) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return m.accept
}

func (m *mockEnqueuer) queued() []domain.AnalysisJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]domain.AnalysisJob, len(m.jobs))
	copy(jobs, m.jobs)
	return jobs
}
