package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/carebook/clinic-api/pkg/logger"
)

// Service sends transactional clinic mail. Delivery failures are the
// caller's to handle; most call sites log and continue.
type Service interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendBookingConfirmation(ctx context.Context, to, name, date, timeOfDay string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPService(cfg SMTPConfig, log *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: log,
	}
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *smtpService) SendWelcome(_ context.Context, to, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour account has been created. You can now sign in and book appointments.\n", name)
	return s.send(to, "Welcome to the clinic", body)
}

func (s *smtpService) SendBookingConfirmation(_ context.Context, to, name, date, timeOfDay string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour appointment on %s at %s is confirmed.\n", name, date, timeOfDay)
	return s.send(to, "Appointment confirmed", body)
}

// NoopService discards all mail. Used when SMTP is not configured.
type NoopService struct{}

func (NoopService) SendWelcome(context.Context, string, string) error { return nil }
func (NoopService) SendBookingConfirmation(context.Context, string, string, string, string) error {
	return nil
}
