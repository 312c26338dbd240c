package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cocreate-match/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	accountH *AccountHandler,
	matchH *MatchHandler,
	messageH *MessageHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.POST("/users", accountH.Register)

	auth := r.Group("/auth")
	auth.POST("/login", accountH.Login)
	auth.POST("/refresh", accountH.RefreshToken)
	auth.POST("/logout", accountH.Logout)

	protected := r.Group("/", JWTAuthMiddleware(jwtServ))

	matches := protected.Group("/matches")
	matches.GET("/potential", matchH.PotentialMatches)
	matches.GET("/similar", matchH.SimilarProfiles)
	matches.POST("", matchH.CreateMatch)
	matches.GET("/:candidateID/score", matchH.Score)
	matches.GET("/:candidateID/explanation", matchH.Explanation)
	matches.POST("/:matchID/analysis", matchH.EnqueueAnalysis)

	protected.POST("/messages", messageH.PostMessage)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
