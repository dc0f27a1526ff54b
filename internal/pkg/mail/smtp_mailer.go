package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/contactdeck/contactdeck/internal/pkg/config"
)

// Mailer sends notification emails via SMTP.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	sender   string
}

// New builds a mailer from the injected config.
func New(cfg *config.Config) *Mailer {
	sender := cfg.SMTPSender
	if sender == "" {
		sender = "no-reply@localhost"
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		sender:   sender,
	}
}

// Send delivers a single HTML mail.
func (m *Mailer) Send(to string, subject string, body string) error {
	var auth smtp.Auth
	if m.username != "" && m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", m.sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, m.sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}
