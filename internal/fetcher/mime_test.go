package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessagePlain(t *testing.T) {
	raw := "From: Alice Smith <alice@example.com>\r\n" +
		"To: reminders@example.com\r\n" +
		"Subject: Re: Task Reminder - Tasks Due\r\n" +
		"Message-ID: <reply-1@example.com>\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Completed: Fire Safety Training on 2023-10-24\r\n"

	email, err := ParseMessage("42", strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "42", email.ID)
	assert.Equal(t, "<reply-1@example.com>", email.MessageID)
	assert.Equal(t, "alice@example.com", email.From)
	assert.Equal(t, "Re: Task Reminder - Tasks Due", email.Subject)
	assert.Contains(t, email.Body, "Completed: Fire Safety Training on 2023-10-24")
}

func TestParseMessageMultipart(t *testing.T) {
	raw := "From: bob@example.com\r\n" +
		"Subject: =?UTF-8?B?UmU6IFRhc2sgUmVtaW5kZXIgLSBUYXNrcyBEdWU=?=\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=outer\r\n" +
		"\r\n" +
		"--outer\r\n" +
		"Content-Type: multipart/alternative; boundary=inner\r\n" +
		"\r\n" +
		"--inner\r\n" +
		"Content-Type: text/plain; charset=iso-8859-1\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Completed: Data Privacy on 2023-10-01\r\n" +
		"--inner\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>Completed: Ignored on 2023-10-01</p>\r\n" +
		"--inner--\r\n" +
		"--outer\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Disposition: attachment; filename=notes.txt\r\n" +
		"\r\n" +
		"Completed: Also Ignored on 2023-10-01\r\n" +
		"--outer\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Completed: Fire Safety Training on 2023-10-02\r\n" +
		"--outer--\r\n"

	email, err := ParseMessage("7", strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email.From)
	assert.Equal(t, "Re: Task Reminder - Tasks Due", email.Subject)
	assert.Empty(t, email.MessageID)
	assert.Equal(t, "7", email.Key())

	assert.Contains(t, email.Body, "Completed: Data Privacy on 2023-10-01")
	assert.Contains(t, email.Body, "Completed: Fire Safety Training on 2023-10-02")
	assert.NotContains(t, email.Body, "Ignored")
	assert.Less(t, strings.Index(email.Body, "Data Privacy"), strings.Index(email.Body, "Fire Safety"))
}

func TestParseMessageMalformedFrom(t *testing.T) {
	raw := "From: \"broken <carol@example.com>\r\n" +
		"Subject: hi\r\n" +
		"\r\n" +
		"body\r\n"

	email, err := ParseMessage("1", strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", email.From)
}

func TestDecodeRawAcceptsUnpaddedBase64(t *testing.T) {
	// "Subject: x\r\n\r\nhi" in URL-safe base64, without padding
	email, err := decodeRaw("abc", "U3ViamVjdDogeA0KDQpoaQ")
	require.NoError(t, err)
	assert.Equal(t, "x", email.Subject)
	assert.Equal(t, "hi", email.Body)
}
