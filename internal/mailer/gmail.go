package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	gmail "google.golang.org/api/gmail/v1"

	"taskminder/internal/config"
	"taskminder/internal/gmailauth"
)

const maxSendAttempts = 3

// GmailSender sends mail through the Gmail API
type GmailSender struct {
	service *gmail.Service
	userID  string
	from    string
	// backoff returns the wait before retry number attempt
	backoff func(attempt int) time.Duration
}

// NewGmailSender creates a new Gmail API sender
func NewGmailSender(ctx context.Context, cfg *config.MailConfig) (*GmailSender, error) {
	service, err := gmailauth.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	from := cfg.FromAddress
	if from == "" {
		from = cfg.UserEmail
	}
	return &GmailSender{
		service: service,
		userID:  gmailauth.UserID(cfg),
		from:    from,
		backoff: func(attempt int) time.Duration { return time.Duration(attempt*attempt) * time.Second },
	}, nil
}

// Send sends msg, retrying with backoff while Gmail reports quota or rate
// limiting. Other errors are returned at once.
func (s *GmailSender) Send(ctx context.Context, msg *Outgoing) error {
	raw, err := Compose(s.from, msg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}
	message := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	return retry(ctx, s.backoff, func() error {
		_, err := s.service.Users.Messages.Send(s.userID, message).Context(ctx).Do()
		if err == nil {
			logrus.Infof("Sent %q to %s", msg.Subject, strings.Join(msg.To, ", "))
		}
		return err
	})
}

func isRateLimited(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "quota") || strings.Contains(s, "rate")
}

func retry(ctx context.Context, backoff func(int) time.Duration, send func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		err := send()
		if err == nil {
			return nil
		}

		lastErr = err
		logrus.Warnf("Failed to send email (attempt %d/%d): %v", attempt, maxSendAttempts, err)

		if !isRateLimited(err) || attempt == maxSendAttempts {
			break
		}

		wait := backoff(attempt)
		logrus.Infof("Rate limited, waiting %v before retry", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("failed to send email: %w", lastErr)
}
