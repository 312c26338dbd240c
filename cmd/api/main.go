package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"cocreate-match/internal/config"
	"cocreate-match/internal/db"
	"cocreate-match/internal/email"
	apihttp "cocreate-match/internal/http"
	"cocreate-match/internal/repository"
	"cocreate-match/internal/service"
	"cocreate-match/internal/vision"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	accountRepo := repository.NewPgAccountRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	photoRepo := repository.NewPgPhotoRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	matchRepo := repository.NewPgMatchRepository(pool)
	subscriptionRepo := repository.NewPgSubscriptionRepository(pool)
	traitVectorRepo := repository.NewPgTraitVectorRepository(pool)

	cacheTTL := time.Duration(cfg.AnalysisCacheTTLDays) * 24 * time.Hour
	analysisCache := service.NewMemoryAnalysisCache(cacheTTL)
	var (
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			analysisCache = service.NewRedisAnalysisCache(redisClient, cacheTTL)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	// Sin backend de vision configurado se usa el proveedor determinista.
	var visionProvider vision.Provider = vision.NewMockProvider()
	if cfg.VisionBaseURL != "" {
		visionProvider = vision.NewHTTPClient(cfg.VisionBaseURL, cfg.VisionAPIKey, nil)
	}

	basicScorer := service.NewBasicScorer()
	textExtractor := service.NewTextSignalExtractor()
	visualAnalyzer := service.NewVisualAnalyzer(visionProvider)
	chatAnalyzer := service.NewConversationAnalyzer()

	scheduler := service.NewAnalysisScheduler(
		logger,
		analysisCache,
		profileRepo,
		photoRepo,
		messageRepo,
		matchRepo,
		visualAnalyzer,
		chatAnalyzer,
		service.SchedulerOptions{
			Workers:         cfg.AnalysisWorkers,
			MaxAttempts:     cfg.AnalysisMaxAttempts,
			MinChatMessages: cfg.ChatAnalysisMinMessages,
		},
	)
	scheduler.Start()
	defer scheduler.Stop()

	aggregator := service.NewCompatibilityAggregator(logger, basicScorer, textExtractor, analysisCache, scheduler, traitVectorRepo)
	stagger := time.Duration(cfg.AnalysisStaggerSeconds) * time.Second
	ranker := service.NewMatchRanker(logger, aggregator, scheduler, cfg.RankingMaxConcurrency, stagger)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	accountSvc := service.NewAccountService(logger, accountRepo)
	matchSvc := service.NewMatchService(logger, profileRepo, matchRepo, subscriptionRepo, accountRepo, analysisCache, aggregator, ranker, scheduler, emailSender)
	messageSvc := service.NewMessageService(logger, messageRepo, matchRepo, scheduler, cfg.ChatAnalysisMinMessages)

	accountHandler := apihttp.NewAccountHandler(logger, accountSvc, jwtSvc)
	matchHandler := apihttp.NewMatchHandler(logger, matchSvc)
	messageHandler := apihttp.NewMessageHandler(logger, messageSvc)
	router := apihttp.NewRouter(logger, jwtSvc, accountHandler, matchHandler, messageHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
