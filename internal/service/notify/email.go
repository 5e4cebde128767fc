package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// Email sends plain-text mail over SMTP. STARTTLS is negotiated when the
// server offers it. All settings come from the environment: SMTP_HOST,
// SMTP_PORT, SMTP_USER, SMTP_PASSWORD, SMTP_FROM, MAIL_ADDRESS_NOTIFICATION_TO.
type Email struct {
	host     string
	port     string
	user     string
	password string
	from     string
	to       string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmail() *Email {
	e := &Email{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
		to:       os.Getenv("MAIL_ADDRESS_NOTIFICATION_TO"),
		send:     smtp.SendMail,
	}
	if e.port == "" {
		e.port = "587"
	}
	if e.from == "" {
		e.from = e.user
	}
	return e
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(_ context.Context, title, body string) (bool, error) {
	if e.to == "" || e.host == "" || e.user == "" || e.password == "" || e.from == "" {
		return false, nil
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", e.from),
		fmt.Sprintf("To: %s", e.to),
		fmt.Sprintf("Subject: %s", title),
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", e.host, e.port)
	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	if err := e.send(addr, auth, e.from, []string{e.to}, []byte(msg)); err != nil {
		return false, fmt.Errorf("smtp send: %w", err)
	}
	return true, nil
}
