package mail

import (
	"context"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"go.uber.org/zap"
)

var _ domain.Mailer = (*LogMailer)(nil)

// LogMailer writes the link to the log instead of sending it. Development only.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mail")}
}

func (m *LogMailer) SendMagicLink(_ context.Context, to, link string) error {
	m.logger.Info("magic link", zap.String("to", to), zap.String("link", link))
	return nil
}
