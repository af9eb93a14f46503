package app

import (
	"campusreq_backend/internal/email"

	"go.uber.org/zap"
)

// LogEmailProvider stands in for SMTP in development: messages are logged,
// never sent.
type LogEmailProvider struct {
	logger *zap.Logger
}

func NewLogEmailProvider(logger *zap.Logger) *LogEmailProvider {
	return &LogEmailProvider{logger: logger.Named("mail")}
}

func (m *LogEmailProvider) Send(msg *email.Email) error {
	m.logger.Info("email suppressed", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (m *LogEmailProvider) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	m.logger.Info("email suppressed",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.String("template", templateName))
	return nil
}

func (m *LogEmailProvider) Validate() error { return nil }
func (m *LogEmailProvider) Close() error    { return nil }
