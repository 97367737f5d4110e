package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LogSender only logs. Used in development when no mail transport is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, _ string) (SendResult, error) {
	s.log.Info("email not sent, no transport configured", zap.String("to", to), zap.String("subject", subject))
	return SendResult{MessageID: fmt.Sprintf("log-%d", time.Now().UnixNano()), SentAt: time.Now()}, nil
}
