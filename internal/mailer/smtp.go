package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/sirupsen/logrus"

	"taskminder/internal/config"
)

// SMTPSender sends mail through an SMTP submission server. STARTTLS is used
// whenever the server offers it.
type SMTPSender struct {
	addr     string
	user     string
	password string
	from     string
}

// NewSMTPSender creates a sender for cfg
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		addr:     cfg.SMTPAddr(),
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.FromAddress,
	}
}

// Send delivers msg to every recipient in msg.To
func (s *SMTPSender) Send(ctx context.Context, msg *Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := Compose(s.from, msg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}

	var auth sasl.Client
	if s.user != "" {
		auth = sasl.NewPlainClient("", s.user, s.password)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, msg.To, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", s.addr, err)
	}

	logrus.Infof("Sent %q to %s", msg.Subject, strings.Join(msg.To, ", "))
	return nil
}
