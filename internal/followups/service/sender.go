package service

import (
	"context"

	"sdr_backend/platform/logger"
)

// LogSender writes follow-ups to the log instead of delivering them. It is
// used when no messaging gateway is configured.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message and always succeeds.
func (s *LogSender) Send(_ context.Context, contact, message string) error {
	s.log.Info("follow-up delivery (log only)", "contact", contact, "message", message)
	return nil
}
