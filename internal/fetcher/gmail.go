package fetcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	gmail "google.golang.org/api/gmail/v1"

	"taskminder/internal/config"
	"taskminder/internal/gmailauth"
	"taskminder/internal/model"
)

const unreadQuery = "is:unread in:inbox"

// GmailAPIFetcher reads unread inbox messages through the Gmail API. Marking
// a message seen removes its UNREAD label.
type GmailAPIFetcher struct {
	service *gmail.Service
	userID  string
}

// NewGmailAPIFetcher creates a new Gmail API fetcher
func NewGmailAPIFetcher(ctx context.Context, cfg *config.MailConfig) (*GmailAPIFetcher, error) {
	service, err := gmailauth.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GmailAPIFetcher{service: service, userID: gmailauth.UserID(cfg)}, nil
}

// FetchUnseen lists unread inbox messages, oldest first, and decodes each
// one from its raw form.
func (f *GmailAPIFetcher) FetchUnseen(ctx context.Context) ([]model.EmailMessage, error) {
	var refs []*gmail.Message
	err := f.service.Users.Messages.List(f.userID).Q(unreadQuery).Pages(ctx, func(resp *gmail.ListMessagesResponse) error {
		refs = append(refs, resp.Messages...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]model.EmailMessage, 0, len(refs))
	// the API lists newest first
	for i := len(refs) - 1; i >= 0; i-- {
		id := refs[i].Id
		msg, err := f.service.Users.Messages.Get(f.userID, id).Format("raw").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", id, err)
		}

		email, err := decodeRaw(id, msg.Raw)
		if err != nil {
			logrus.WithField("gmail_id", id).Warnf("Failed to parse message: %v", err)
		}
		emails = append(emails, email)
	}

	return emails, nil
}

func decodeRaw(id, raw string) (model.EmailMessage, error) {
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		// some responses drop the padding
		data, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
		if err != nil {
			return model.EmailMessage{ID: id}, fmt.Errorf("failed to decode raw message: %w", err)
		}
	}
	return ParseMessage(id, strings.NewReader(string(data)))
}

// MarkSeen removes the UNREAD label from the message
func (f *GmailAPIFetcher) MarkSeen(ctx context.Context, id string) error {
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	if _, err := f.service.Users.Messages.Modify(f.userID, id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", id, err)
	}
	return nil
}

// Close is a no-op; the Gmail service holds no connection.
func (f *GmailAPIFetcher) Close() error {
	return nil
}
