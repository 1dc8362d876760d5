// Package mailer sends the admin notification emails for contact form
// submissions. When no SMTP host is configured it degrades to a logged
// simulation so the submission flow never depends on a mail server.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/smtp"
	"strconv"
	"time"

	"github.com/daffodils/florist-api/internal/config"
)

type Message struct {
	Subject string
	Body    string
	ReplyTo string
}

// Mailer delivers a message and returns a provider message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

func New(cfg config.EmailConfig, log *slog.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{log: log}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.EmailConfig
}

func (m *smtpMailer) Send(_ context.Context, msg Message) (string, error) {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, m.cfg.To, msg.Subject)
	if msg.ReplyTo != "" {
		headers += "Reply-To: " + msg.ReplyTo + "\r\n"
	}
	body := []byte(headers + "\r\n" + msg.Body)

	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, from, []string{m.cfg.To}, body); err != nil {
		return "", fmt.Errorf("send mail: %w", err)
	}
	return fmt.Sprintf("<%d.%d@%s>", time.Now().UnixNano(), rand.IntN(10000), m.cfg.Host), nil
}

// logMailer records the send instead of performing it.
type logMailer struct {
	log *slog.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) (string, error) {
	id := fmt.Sprintf("sim_%d_%04d", time.Now().UnixMilli(), rand.IntN(10000))
	m.log.Info("email send simulated",
		"subject", msg.Subject,
		"reply_to", msg.ReplyTo,
		"message_id", id,
	)
	return id, nil
}
