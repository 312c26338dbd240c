package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuracion del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	VisionBaseURL string `env:"VISION_BASE_URL"`
	VisionAPIKey  string `env:"VISION_API_KEY"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	// Tuning del pipeline de analisis.
	AnalysisCacheTTLDays    int `env:"ANALYSIS_CACHE_TTL_DAYS" envDefault:"30"`
	AnalysisWorkers         int `env:"ANALYSIS_WORKERS" envDefault:"4"`
	AnalysisMaxAttempts     int `env:"ANALYSIS_MAX_ATTEMPTS" envDefault:"3"`
	AnalysisStaggerSeconds  int `env:"ANALYSIS_STAGGER_SECONDS" envDefault:"5"`
	RankingMaxConcurrency   int `env:"RANKING_MAX_CONCURRENCY" envDefault:"8"`
	ChatAnalysisMinMessages int `env:"CHAT_ANALYSIS_MIN_MESSAGES" envDefault:"20"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
