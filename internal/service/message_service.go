package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cocreate-match/internal/domain"
	"cocreate-match/internal/repository"
)

var ErrMessageInvalidInput = errors.New("message invalid input")

// MessageService persiste mensajes y dispara el analisis de chat cuando la
// conversacion acumula datos suficientes.
type MessageService struct {
	logger    *zap.Logger
	messages  repository.MessageRepository
	matches   repository.MatchRepository
	scheduler AnalysisEnqueuer

	minForAnalysis int
}

func NewMessageService(logger *zap.Logger, messages repository.MessageRepository, matches repository.MatchRepository, scheduler AnalysisEnqueuer, minForAnalysis int) *MessageService {
	if minForAnalysis <= 0 {
		minForAnalysis = minMessagesForChatCache
	}
	return &MessageService{
		logger:         logger,
		messages:       messages,
		matches:        matches,
		scheduler:      scheduler,
		minForAnalysis: minForAnalysis,
	}
}

// Post guarda el mensaje y, si el match cruzo el umbral, encola el analisis
// de compatibilidad de chat. El dedup del scheduler hace barato reintentarlo.
func (s *MessageService) Post(ctx context.Context, msg domain.Message) (domain.Message, error) {
	msg.MatchID = strings.TrimSpace(msg.MatchID)
	msg.SenderID = strings.TrimSpace(msg.SenderID)
	msg.Content = strings.TrimSpace(msg.Content)

	if msg.MatchID == "" || msg.SenderID == "" || msg.Content == "" {
		return domain.Message{}, ErrMessageInvalidInput
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("persist message: %w", err)
	}

	s.maybeTriggerChatAnalysis(ctx, msg.MatchID)
	return msg, nil
}

func (s *MessageService) maybeTriggerChatAnalysis(ctx context.Context, matchID string) {
	count, err := s.messages.CountByMatchID(ctx, matchID)
	if err != nil {
		s.logger.Warn("count messages failed", zap.String("match_id", matchID), zap.Error(err))
		return
	}
	// Primer analisis al cruzar el umbral, refresco cada 10 mensajes.
	if count < s.minForAnalysis || count%10 != 0 {
		return
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		s.logger.Warn("get match failed", zap.String("match_id", matchID), zap.Error(err))
		return
	}

	enqueued := s.scheduler.Enqueue(domain.AnalysisJob{
		Pair:    domain.NewPairKey(match.User1ID, match.User2ID),
		MatchID: match.ID,
		Type:    domain.AnalysisChat,
	})
	if enqueued {
		s.logger.Info("chat analysis queued",
			zap.String("match_id", matchID),
			zap.Int("message_count", count),
		)
	}
}
