package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"jobportal/internal/config"
)

// Mailer delivers one-time login codes to applicants.
type Mailer interface {
	SendOTP(to, code string) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer sends codes through the configured SMTP relay. When no
// host is configured it falls back to logging the code, which is what
// local development wants.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return &logMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendOTP(to, code string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your login code\r\n\r\nYour one-time login code is %s. It expires in 10 minutes.\r\n",
		m.cfg.From, to, code,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send OTP email to %s: %w", to, err)
	}
	return nil
}

type logMailer struct{}

func (m *logMailer) SendOTP(to, code string) error {
	log.Printf("📧 OTP for %s: %s (SMTP not configured)", to, code)
	return nil
}
