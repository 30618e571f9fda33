// Package mailer delivers request lifecycle emails. Delivery runs as a
// post-commit side effect; a failed send is logged and never fails the
// request mutation that triggered it.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"campus-backend/internal/config"
)

// EmailProvider is an interface for sending email
type EmailProvider interface {
	Send(to []string, subject, body string) error
}

// SMTPProvider sends email through a plain SMTP relay
type SMTPProvider struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		from:     cfg.SMTP.From,
	}
}

func (p *SMTPProvider) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := strings.Join([]string{
		"From: " + p.from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	auth := smtp.PlainAuth("", p.username, p.password, p.host)

	if err := smtp.SendMail(addr, auth, p.from, to, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %d recipient(s): %w", len(to), err)
	}
	return nil
}

// MockProvider records sends instead of delivering. Used in development when
// no SMTP relay is configured, and by tests.
type MockProvider struct {
	Sent []MockMessage
}

type MockMessage struct {
	To      []string
	Subject string
	Body    string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Send(to []string, subject, body string) error {
	p.Sent = append(p.Sent, MockMessage{To: to, Subject: subject, Body: body})
	log.Printf("[Mailer] mock send to=%v subject=%q", to, subject)
	return nil
}

// NewProvider picks the SMTP provider when a host is configured, otherwise
// the mock.
func NewProvider(cfg *config.Config) EmailProvider {
	if cfg.SMTP.Host == "" {
		log.Println("[Mailer] no SMTP host configured, using mock provider")
		return NewMockProvider()
	}
	return NewSMTPProvider(cfg)
}
