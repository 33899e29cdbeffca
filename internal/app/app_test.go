package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskminder/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "0"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Mail: config.MailConfig{
			Transport:    "imap",
			Sender:       "smtp",
			FromAddress:  "reminders@example.com",
			IMAPHost:     "127.0.0.1",
			IMAPPort:     1,
			IMAPUser:     "reminders",
			IMAPPassword: "secret",
			IMAPMailbox:  "INBOX",
			SMTPHost:     "127.0.0.1",
			SMTPPort:     1,
		},
		Reminder:  config.ReminderConfig{Subject: config.DefaultReminderSubject},
		Scheduler: config.SchedulerConfig{IntervalMinutes: 5},
	}
}

func TestNewWiresRoutes(t *testing.T) {
	a, err := New(context.Background(), testConfig(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	for _, path := range []string{"/healthz", "/metrics", "/api/v1/people", "/api/v1/scheduler/status"} {
		w := httptest.NewRecorder()
		a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRunOnceFailsWhenMailboxUnreachable(t *testing.T) {
	a, err := New(context.Background(), testConfig(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Scheduler.RunOnce(context.Background())
	assert.Error(t, err)
	assert.NotEmpty(t, a.Scheduler.Status().LastError)
}

func TestNewRejectsUnknownTransport(t *testing.T) {
	cfg := testConfig()
	cfg.Mail.Transport = "pop3"

	_, err := New(context.Background(), cfg, prometheus.NewRegistry())
	assert.Error(t, err)
}
