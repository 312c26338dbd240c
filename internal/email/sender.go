package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para notificaciones de match por correo.
type Sender interface {
	SendMatchNotification(ctx context.Context, toEmail string, matchName string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendMatchNotification(_ context.Context, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
