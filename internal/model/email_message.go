package model

// EmailMessage is an inbound message as handed over by a mail transport.
// ID is the transport handle used to mark the message seen; MessageID is the
// RFC 5322 Message-ID header when present.
type EmailMessage struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	Subject   string `json:"subject"`
	From      string `json:"from"`
	Body      string `json:"body"`
}

// Key identifies the message for idempotency checks
func (m EmailMessage) Key() string {
	if m.MessageID != "" {
		return m.MessageID
	}
	return m.ID
}
