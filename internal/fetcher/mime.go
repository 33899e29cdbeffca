package fetcher

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"

	"taskminder/internal/model"
)

// ParseMessage decodes a raw RFC 5322 message. Subject is decoded, From is
// reduced to the bare address and Body is the concatenation of every inline
// text/plain part; attachments and other media types are skipped.
func ParseMessage(id string, r io.Reader) (model.EmailMessage, error) {
	email := model.EmailMessage{ID: id}

	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return email, fmt.Errorf("failed to read message: %w", err)
	}
	if err != nil {
		logrus.WithField("message_id", id).Warnf("Unknown charset in message header: %v", err)
	}
	defer mr.Close()

	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	} else {
		email.Subject = mr.Header.Get("Subject")
	}
	email.From = senderAddress(&mr.Header)
	if messageID, err := mr.Header.MessageID(); err == nil && messageID != "" {
		email.MessageID = "<" + messageID + ">"
	}

	var parts []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return email, fmt.Errorf("failed to read part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if contentType != "" && contentType != "text/plain" {
			continue
		}

		content, err := io.ReadAll(p.Body)
		if err != nil {
			return email, fmt.Errorf("failed to read part body: %w", err)
		}
		parts = append(parts, string(content))
	}
	email.Body = strings.Join(parts, "\n")

	return email, nil
}

func senderAddress(h *mail.Header) string {
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		return from[0].Address
	}
	raw := strings.TrimSpace(h.Get("From"))
	if i := strings.LastIndex(raw, "<"); i >= 0 {
		raw = strings.TrimSuffix(raw[i+1:], ">")
	}
	return strings.TrimSpace(raw)
}
