package sms

import (
	"context"

	"go.uber.org/zap"
)

// Sender - внешний SMS-шлюз. Ядро знает только этот интерфейс;
// конкретная интеграция живет за его пределами.
type Sender interface {
	Send(ctx context.Context, phone string, text string) error
}

// LogSender пишет сообщения в лог вместо реальной отправки.
// Используется локально и в тестах.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, phone string, text string) error {
	s.logger.Info("SMS отправлено (заглушка)",
		zap.String("phone", phone),
		zap.String("text", text),
	)
	return nil
}
