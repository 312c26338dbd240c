package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cocreate-match/internal/repository"
	"cocreate-match/internal/service"
)

// MatchHandler mantiene dependencias para endpoints de matching.
type MatchHandler struct {
	logger    *zap.Logger
	matchServ *service.MatchService
}

func NewMatchHandler(logger *zap.Logger, matchServ *service.MatchService) *MatchHandler {
	return &MatchHandler{
		logger:    logger,
		matchServ: matchServ,
	}
}

// PotentialMatches maneja GET /matches/potential.
func (h *MatchHandler) PotentialMatches(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	limit := parseQueryInt(c, "limit", 10)
	offset := parseQueryInt(c, "offset", 0)

	ranked, err := h.matchServ.RankCandidates(c.Request.Context(), claims.UserID, limit, offset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("rank candidates failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rank candidates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": ranked})
}

// SimilarProfiles maneja GET /matches/similar.
func (h *MatchHandler) SimilarProfiles(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	limit := parseQueryInt(c, "limit", 10)

	profiles, err := h.matchServ.SimilarProfiles(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("similar profiles failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not find similar profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// Score maneja GET /matches/:candidateID/score.
func (h *MatchHandler) Score(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	candidateID := c.Param("candidateID")
	if candidateID == "" || candidateID == claims.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate"})
		return
	}

	result, err := h.matchServ.ComputeMatch(c.Request.Context(), claims.UserID, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("compute match failed", zap.String("candidate_id", candidateID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute match"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Explanation maneja GET /matches/:candidateID/explanation.
func (h *MatchHandler) Explanation(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	candidateID := c.Param("candidateID")
	if candidateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate"})
		return
	}

	explanation, err := h.matchServ.GetExplanation(c.Request.Context(), claims.UserID, candidateID)
	if err != nil {
		h.logger.Error("get explanation failed", zap.String("candidate_id", candidateID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get explanation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"explanation": explanation})
}

// CreateMatch maneja POST /matches.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	var req struct {
		CandidateID string `json:"candidate_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create match request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.CandidateID == claims.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate"})
		return
	}

	match, err := h.matchServ.CreateMatch(c.Request.Context(), claims.UserID, req.CandidateID)
	if err != nil {
		h.logger.Error("create match failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create match"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"match": match})
}

// EnqueueAnalysis maneja POST /matches/:matchID/analysis.
func (h *MatchHandler) EnqueueAnalysis(c *gin.Context) {
	if _, ok := GetAuthClaims(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	matchID := c.Param("matchID")
	var req struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid enqueue analysis request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	queued, err := h.matchServ.EnqueueDeepAnalysis(c.Request.Context(), matchID, req.Type)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		h.logger.Error("enqueue analysis failed", zap.String("match_id", matchID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not enqueue analysis"})
		return
	}

	status := "queued"
	if !queued {
		status = "already_in_progress"
	}
	c.JSON(http.StatusAccepted, gin.H{"status": status})
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
