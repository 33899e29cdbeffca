package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"sync"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"taskminder/internal/config"
	"taskminder/internal/model"
)

// IMAPFetcher reads unseen messages from an IMAP mailbox. The connection is
// opened on first use and re-opened when the server has dropped it.
type IMAPFetcher struct {
	addr     string
	user     string
	password string
	mailbox  string
	dial     func(addr string) (*client.Client, error)

	mu     sync.Mutex
	client *client.Client
}

// NewIMAPFetcher creates a fetcher for cfg; it does not connect yet.
func NewIMAPFetcher(cfg *config.MailConfig) *IMAPFetcher {
	mailbox := cfg.IMAPMailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	host := cfg.IMAPHost
	return &IMAPFetcher{
		addr:     cfg.IMAPAddr(),
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		mailbox:  mailbox,
		dial: func(addr string) (*client.Client, error) {
			return client.DialTLS(addr, &tls.Config{ServerName: host})
		},
	}
}

func (f *IMAPFetcher) connect() (*client.Client, error) {
	if f.client != nil && f.client.State() != imap.LogoutState {
		return f.client, nil
	}

	c, err := f.dial(f.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	if err := c.Login(f.user, f.password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}
	if _, err := c.Select(f.mailbox, false); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to select %s: %w", f.mailbox, err)
	}

	logrus.Infof("Connected to IMAP server %s", f.addr)
	f.client = c
	return c, nil
}

// FetchUnseen searches for messages without \Seen and fetches them with
// BODY.PEEK so that fetching leaves the flags alone.
func (f *IMAPFetcher) FetchUnseen(ctx context.Context) ([]model.EmailMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := f.connect()
	if err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		f.reset()
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	if len(uids) == 0 {
		return []model.EmailMessage{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	var emails []model.EmailMessage
	for msg := range messages {
		id := strconv.FormatUint(uint64(msg.Uid), 10)
		body := msg.GetBody(section)
		if body == nil {
			logrus.WithField("uid", id).Warn("IMAP message has no body")
			emails = append(emails, model.EmailMessage{ID: id})
			continue
		}

		email, err := ParseMessage(id, body)
		if err != nil {
			logrus.WithField("uid", id).Warnf("Failed to parse IMAP message: %v", err)
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		f.reset()
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return emails, nil
}

// MarkSeen adds \Seen to the message with the given UID.
func (f *IMAPFetcher) MarkSeen(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid IMAP uid %q: %w", id, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := f.connect()
	if err != nil {
		return err
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(uid))
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("failed to mark message %s as seen: %w", id, err)
	}
	return nil
}

func (f *IMAPFetcher) reset() {
	if f.client != nil {
		_ = f.client.Logout()
		f.client = nil
	}
}

// Close logs out of the server if connected.
func (f *IMAPFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		return nil
	}
	err := f.client.Logout()
	f.client = nil
	return err
}
