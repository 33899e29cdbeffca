// Package fetcher talks to the inbound mailbox: it lists unseen messages and
// marks them seen once they have been examined.
package fetcher

import (
	"context"
	"fmt"

	"taskminder/internal/config"
	"taskminder/internal/model"
)

// MailFetcher is an inbound mail transport.
type MailFetcher interface {
	// FetchUnseen returns the unseen messages in mailbox order without
	// changing their flags.
	FetchUnseen(ctx context.Context) ([]model.EmailMessage, error)
	// MarkSeen flags one message, by transport id, as seen.
	MarkSeen(ctx context.Context, id string) error
	Close() error
}

// New returns the fetcher selected by cfg.Transport.
func New(ctx context.Context, cfg *config.MailConfig) (MailFetcher, error) {
	switch cfg.Transport {
	case "imap":
		return NewIMAPFetcher(cfg), nil
	case "gmail":
		return NewGmailAPIFetcher(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.Transport)
	}
}
