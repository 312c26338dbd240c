package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cocreate-match/internal/domain"
	"cocreate-match/internal/repository"
)

const (
	defaultAnalysisWorkers = 4
	defaultMaxAttempts     = 3
	retryBackoff           = 10 * time.Second
)

// AnalysisScheduler corre los analisis caros (visual y chat) fuera del
// request path y escribe los resultados en cache. Reintenta hasta agotar los
// intentos y deduplica jobs en vuelo por (par, tipo): reencolar un par que
// ya esta en queued/running/retrying es un no-op.
type AnalysisScheduler struct {
	logger   *zap.Logger
	cache    AnalysisCache
	profiles repository.ProfileRepository
	photos   repository.PhotoRepository
	messages repository.MessageRepository
	matches  repository.MatchRepository
	visual   *VisualAnalyzer
	chat     *ConversationAnalyzer

	workers         int
	maxAttempts     int
	minChatMessages int
	retryBackoff    time.Duration

	jobs   chan domain.AnalysisJob
	mu     sync.Mutex
	states map[string]string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SchedulerOptions permite ajustar el pool sin tocar los defaults.
type SchedulerOptions struct {
	Workers         int
	MaxAttempts     int
	MinChatMessages int
	RetryBackoff    time.Duration
}

func NewAnalysisScheduler(
	logger *zap.Logger,
	cache AnalysisCache,
	profiles repository.ProfileRepository,
	photos repository.PhotoRepository,
	messages repository.MessageRepository,
	matches repository.MatchRepository,
	visual *VisualAnalyzer,
	chat *ConversationAnalyzer,
	opts SchedulerOptions,
) *AnalysisScheduler {
	if opts.Workers <= 0 {
		opts.Workers = defaultAnalysisWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.MinChatMessages <= 0 {
		opts.MinChatMessages = minMessagesForChatCache
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = retryBackoff
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &AnalysisScheduler{
		logger:          logger,
		cache:           cache,
		profiles:        profiles,
		photos:          photos,
		messages:        messages,
		matches:         matches,
		visual:          visual,
		chat:            chat,
		workers:         opts.Workers,
		maxAttempts:     opts.MaxAttempts,
		minChatMessages: opts.MinChatMessages,
		retryBackoff:    opts.RetryBackoff,
		jobs:            make(chan domain.AnalysisJob, 256),
		states:          make(map[string]string),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start lanza el pool de workers.
func (s *AnalysisScheduler) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Stop frena los workers y espera a que terminen el job en curso. Los jobs
// encolados sin consumir se descartan; el request path sigue sirviendo el
// mejor score conocido.
func (s *AnalysisScheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Enqueue agrega un job respetando su delay. Devuelve false si ya hay un job
// en vuelo para el mismo (par, tipo).
func (s *AnalysisScheduler) Enqueue(job domain.AnalysisJob) bool {
	key := jobKey(job.Pair, job.Type)

	s.mu.Lock()
	switch s.states[key] {
	case domain.JobQueued, domain.JobRunning, domain.JobRetrying:
		s.mu.Unlock()
		return false
	}
	s.states[key] = domain.JobQueued
	s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.ScheduledAt = time.Now().UTC()

	s.dispatch(job, job.Delay)
	return true
}

// Status devuelve el estado conocido del ultimo job para el par y tipo, o
// cadena vacia si nunca se encolo.
func (s *AnalysisScheduler) Status(pair domain.PairKey, analysisType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[jobKey(pair, analysisType)]
}

func (s *AnalysisScheduler) dispatch(job domain.AnalysisJob, delay time.Duration) {
	if delay <= 0 {
		s.push(job)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			s.push(job)
		case <-s.ctx.Done():
		}
	}()
}

func (s *AnalysisScheduler) push(job domain.AnalysisJob) {
	select {
	case s.jobs <- job:
	case <-s.ctx.Done():
	}
}

func (s *AnalysisScheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case job := <-s.jobs:
			s.run(job)
		}
	}
}

func (s *AnalysisScheduler) run(job domain.AnalysisJob) {
	key := jobKey(job.Pair, job.Type)
	s.setState(key, domain.JobRunning)

	err := s.execute(job)
	if err == nil {
		s.setState(key, domain.JobCompleted)
		return
	}

	job.Attempts++
	if job.Attempts >= s.maxAttempts {
		// Job agotado: queda el valor previo del cache, si existia.
		s.logger.Error("analysis job failed",
			zap.String("job_id", job.ID),
			zap.String("pair", job.Pair.String()),
			zap.String("type", job.Type),
			zap.Int("attempts", job.Attempts),
			zap.Error(err),
		)
		s.setState(key, domain.JobFailed)
		return
	}

	s.logger.Warn("analysis job retrying",
		zap.String("job_id", job.ID),
		zap.String("pair", job.Pair.String()),
		zap.String("type", job.Type),
		zap.Int("attempts", job.Attempts),
		zap.Error(err),
	)
	s.setState(key, domain.JobRetrying)
	s.dispatch(job, s.retryBackoff*time.Duration(job.Attempts))
}

// execute recalcula la senal del job y sobrescribe el cache: reejecutar el
// mismo job es idempotente.
func (s *AnalysisScheduler) execute(job domain.AnalysisJob) error {
	ctx, cancel := context.WithTimeout(s.ctx, 60*time.Second)
	defer cancel()

	switch job.Type {
	case domain.AnalysisVisual:
		return s.executeVisual(ctx, job)
	case domain.AnalysisChat:
		return s.executeChat(ctx, job)
	default:
		return fmt.Errorf("unknown analysis type %q", job.Type)
	}
}

func (s *AnalysisScheduler) executeVisual(ctx context.Context, job domain.AnalysisJob) error {
	profileA, err := s.profiles.GetByID(ctx, job.Pair.A)
	if err != nil {
		return fmt.Errorf("get profile %s: %w", job.Pair.A, err)
	}
	profileB, err := s.profiles.GetByID(ctx, job.Pair.B)
	if err != nil {
		return fmt.Errorf("get profile %s: %w", job.Pair.B, err)
	}

	photosA, err := s.photoURLs(ctx, profileA.ID)
	if err != nil {
		return err
	}
	photosB, err := s.photoURLs(ctx, profileB.ID)
	if err != nil {
		return err
	}

	visualA, err := s.visual.AnalyzeUserPhotos(ctx, photosA)
	if err != nil {
		return err
	}
	visualB, err := s.visual.AnalyzeUserPhotos(ctx, photosB)
	if err != nil {
		return err
	}
	if visualA == nil || visualB == nil {
		// Sin fotos no hay senal; el job termina sin escribir cache.
		return nil
	}

	payload, err := json.Marshal(domain.VisualAnalysis{
		Score:    s.visual.Compatibility(visualA, visualB),
		Insights: s.visual.GenerateInsights(visualA, visualB),
		ProfileA: visualA,
		ProfileB: visualB,
	})
	if err != nil {
		return err
	}
	if err := s.cache.Put(ctx, job.Pair, domain.AnalysisVisual, payload); err != nil {
		return fmt.Errorf("cache visual analysis: %w", err)
	}

	s.logger.Info("visual analysis completed",
		zap.String("job_id", job.ID),
		zap.String("pair", job.Pair.String()),
	)
	return nil
}

func (s *AnalysisScheduler) executeChat(ctx context.Context, job domain.AnalysisJob) error {
	if job.MatchID == "" {
		return fmt.Errorf("chat job without match id")
	}

	// Se analizan los ultimos 100 mensajes.
	messages, err := s.messages.ListByMatchID(ctx, job.MatchID, 100)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	if len(messages) < s.minChatMessages {
		// El trigger de conteo se adelanto; sin datos suficientes no se
		// cachea nada y el job termina.
		return nil
	}

	analysis, ok := s.chat.Analyze(messages)
	if !ok {
		return nil
	}

	payload, err := json.Marshal(domain.ChatAnalysis{
		Compatibility: analysis.Compatibility,
		Insights:      s.chat.GenerateInsights(analysis),
		Analysis:      analysis,
	})
	if err != nil {
		return err
	}
	if err := s.cache.Put(ctx, job.Pair, domain.AnalysisChat, payload); err != nil {
		return fmt.Errorf("cache chat analysis: %w", err)
	}

	if err := s.matches.UpdateCompatibilityScore(ctx, job.MatchID, analysis.Compatibility); err != nil {
		// El cache ya quedo consistente; la copia del match es secundaria.
		s.logger.Warn("update match compatibility failed",
			zap.String("match_id", job.MatchID),
			zap.Error(err),
		)
	}

	s.logger.Info("chat analysis completed",
		zap.String("job_id", job.ID),
		zap.String("match_id", job.MatchID),
	)
	return nil
}

func (s *AnalysisScheduler) photoURLs(ctx context.Context, userID string) ([]string, error) {
	photos, err := s.photos.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos for %s: %w", userID, err)
	}
	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		urls = append(urls, photo.URL)
	}
	return urls, nil
}

func (s *AnalysisScheduler) setState(key, state string) {
	s.mu.Lock()
	s.states[key] = state
	s.mu.Unlock()
}

func jobKey(pair domain.PairKey, analysisType string) string {
	return pair.String() + "|" + analysisType
}
