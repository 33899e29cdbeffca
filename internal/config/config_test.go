package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver: "postgres",
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
		Mail: MailConfig{
			Transport:    "imap",
			Sender:       "smtp",
			FromAddress:  "tasks@example.com",
			IMAPHost:     "imap.example.com",
			IMAPUser:     "tasks@example.com",
			IMAPPassword: "secret",
			SMTPHost:     "smtp.example.com",
		},
		Reminder:  ReminderConfig{Subject: DefaultReminderSubject, Schedule: "0 0 8 * * *"},
		Report:    ReportConfig{Schedule: "0 0 7 * * MON"},
		Scheduler: SchedulerConfig{IntervalMinutes: 5},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"missing db name", func(c *Config) { c.Database.DBName = "" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"sqlite without path", func(c *Config) { c.Database = DatabaseConfig{Driver: "sqlite"} }},
		{"imap without password", func(c *Config) { c.Mail.IMAPPassword = "" }},
		{"gmail transport without oauth", func(c *Config) { c.Mail.Transport = "gmail" }},
		{"smtp without from", func(c *Config) { c.Mail.FromAddress = "" }},
		{"empty subject", func(c *Config) { c.Reminder.Subject = "  " }},
		{"zero interval", func(c *Config) { c.Scheduler.IntervalMinutes = 0 }},
		{"bad cron", func(c *Config) { c.Reminder.Schedule = "every day" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestGmailOnlyConfig(t *testing.T) {
	c := validConfig()
	c.Mail = MailConfig{
		Transport:    "gmail",
		Sender:       "gmail",
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "token",
		UserEmail:    "tasks@example.com",
	}
	assert.NoError(t, c.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:   "mysql",
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}
	assert.Equal(t, "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=UTC", cfg.GetDSN())

	cfg.Driver = "postgres"
	cfg.Port = 5432
	cfg.SSLMode = "disable"
	assert.Equal(t, "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable", cfg.GetDSN())

	cfg.Driver = "sqlite"
	cfg.Path = "/tmp/tasks.db"
	assert.Equal(t, "/tmp/tasks.db", cfg.GetDSN())
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  driver: sqlite
  path: tasks.db
mail:
  imap_host: imap.example.com
reminder:
  subject: Task Reminder - Tasks Due
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ADMIN_EMAILS", "boss@example.com, ops@example.com")
	t.Setenv("SCHEDULER_INTERVAL_MINUTES", "15")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path}))

	cfg, err := LoadConfig(fs)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "tasks.db", cfg.Database.Path)
	assert.Equal(t, "imap.example.com", cfg.Mail.IMAPHost)
	assert.Equal(t, 993, cfg.Mail.IMAPPort)
	assert.Equal(t, "INBOX", cfg.Mail.IMAPMailbox)
	assert.Equal(t, 15, cfg.Scheduler.IntervalMinutes)
	assert.Equal(t, []string{"boss@example.com", "ops@example.com"}, cfg.Report.AdminEmails)
	assert.Equal(t, "0 0 8 * * *", cfg.Scheduler.ReminderSpec)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestConfigureLogging(t *testing.T) {
	assert.NoError(t, (&LoggingConfig{Level: "debug", Format: "text"}).ConfigureLogging())
	assert.Error(t, (&LoggingConfig{Level: "loud"}).ConfigureLogging())
}
