package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
)

type Service interface {
	SendPasswordReset(ctx context.Context, to string, code string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewService returns an SMTP sender when a host is configured, otherwise a
// sender that writes messages to the log. The fallback keeps password reset
// usable in development without a mail relay.
func NewService(cfg Config, log *logger.Logger) Service {
	if cfg.Host == "" {
		return &consoleService{logger: log}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to string, code string) error {
	body := fmt.Sprintf(
		"<p>Your password reset code is <strong>%s</strong>.</p><p>The code expires in 15 minutes. If you did not request a reset, ignore this message.</p>",
		code,
	)
	return s.SendCustom(ctx, to, "Password reset code", body)
}

func (s *smtpService) SendCustom(_ context.Context, to string, subject string, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

type consoleService struct {
	logger *logger.Logger
}

func (s *consoleService) SendPasswordReset(ctx context.Context, to string, code string) error {
	return s.SendCustom(ctx, to, "Password reset code", "reset code: "+code)
}

func (s *consoleService) SendCustom(_ context.Context, to string, subject string, content string) error {
	s.logger.Info(fmt.Sprintf("email (console fallback) to=%s subject=%q body=%q", to, subject, content))
	return nil
}
