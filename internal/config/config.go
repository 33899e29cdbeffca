package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultReminderSubject is the subject of outgoing reminders; replies are
// only processed when their subject matches it.
const DefaultReminderSubject = "Task Reminder - Tasks Due"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Mail      MailConfig      `mapstructure:"mail"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Report    ReportConfig    `mapstructure:"report"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // mysql, postgres or sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// MailConfig holds inbound transport and outbound sender configuration
type MailConfig struct {
	Transport   string `mapstructure:"transport"` // imap or gmail
	Sender      string `mapstructure:"sender"`    // smtp or gmail
	FromAddress string `mapstructure:"from_address"`

	IMAPHost     string `mapstructure:"imap_host"`
	IMAPPort     int    `mapstructure:"imap_port"`
	IMAPUser     string `mapstructure:"imap_user"`
	IMAPPassword string `mapstructure:"imap_password"`
	IMAPMailbox  string `mapstructure:"imap_mailbox"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`

	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserEmail    string `mapstructure:"user_email"`
}

// ReminderConfig holds reminder email configuration
type ReminderConfig struct {
	Subject  string `mapstructure:"subject"`
	Schedule string `mapstructure:"schedule"`
}

// ReportConfig holds completion report configuration
type ReportConfig struct {
	Schedule    string   `mapstructure:"schedule"`
	AdminEmails []string `mapstructure:"admin_emails"`
	FileName    string   `mapstructure:"file_name"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	IntervalMinutes int    `mapstructure:"interval_minutes"`
	ReminderSpec    string `mapstructure:"-"`
	ReportSpec      string `mapstructure:"-"`
}

// LoggingConfig controls application logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Flags registers the command-line flags understood by LoadConfig.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (default: ./config.yaml or ./config/config.yaml)")
	fs.Bool("once", false, "process unseen replies once and exit")
}

// LoadConfig loads configuration from the config file, environment variables
// and the given flags. fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("error binding flags: %w", err)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// ADMIN_EMAILS arrives as one comma-separated value
	config.Report.AdminEmails = splitList(strings.Join(config.Report.AdminEmails, ","))

	config.Scheduler.ReminderSpec = config.Reminder.Schedule
	config.Scheduler.ReportSpec = config.Report.Schedule

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "taskminder.db")

	v.SetDefault("mail.transport", "imap")
	v.SetDefault("mail.sender", "smtp")
	v.SetDefault("mail.imap_port", 993)
	v.SetDefault("mail.imap_mailbox", "INBOX")
	v.SetDefault("mail.smtp_port", 587)

	v.SetDefault("reminder.subject", DefaultReminderSubject)
	v.SetDefault("reminder.schedule", "0 0 8 * * *")
	v.SetDefault("report.schedule", "0 0 7 * * MON")
	v.SetDefault("report.file_name", "task_report.xlsx")

	v.SetDefault("scheduler.interval_minutes", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.path", "DB_PATH")

	// Mail
	v.BindEnv("mail.transport", "MAIL_TRANSPORT")
	v.BindEnv("mail.sender", "MAIL_SENDER")
	v.BindEnv("mail.from_address", "EMAIL_ADDRESS")
	v.BindEnv("mail.imap_host", "IMAP_SERVER")
	v.BindEnv("mail.imap_port", "IMAP_PORT")
	v.BindEnv("mail.imap_user", "IMAP_USER")
	v.BindEnv("mail.imap_password", "EMAIL_PASSWORD")
	v.BindEnv("mail.imap_mailbox", "IMAP_MAILBOX")
	v.BindEnv("mail.smtp_host", "SMTP_SERVER")
	v.BindEnv("mail.smtp_port", "SMTP_PORT")
	v.BindEnv("mail.smtp_user", "SMTP_USER")
	v.BindEnv("mail.smtp_password", "SMTP_PASSWORD")
	v.BindEnv("mail.client_id", "GMAIL_CLIENT_ID")
	v.BindEnv("mail.client_secret", "GMAIL_CLIENT_SECRET")
	v.BindEnv("mail.refresh_token", "GMAIL_REFRESH_TOKEN")
	v.BindEnv("mail.user_email", "GMAIL_USER_EMAIL")

	// Reminder and report
	v.BindEnv("reminder.subject", "REMINDER_SUBJECT")
	v.BindEnv("reminder.schedule", "REMINDER_SCHEDULE")
	v.BindEnv("report.schedule", "REPORT_SCHEDULE")
	v.BindEnv("report.admin_emails", "ADMIN_EMAILS")
	v.BindEnv("report.file_name", "REPORT_FILE_NAME")

	// Scheduler
	v.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetDSN returns the database connection string for the configured driver
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	case "sqlite":
		return c.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	}
}

// IMAPAddr returns host:port of the IMAP server
func (c *MailConfig) IMAPAddr() string {
	return fmt.Sprintf("%s:%d", c.IMAPHost, c.IMAPPort)
}

// SMTPAddr returns host:port of the SMTP server
func (c *MailConfig) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.SMTPHost, c.SMTPPort)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Database.Driver {
	case "mysql", "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return fmt.Errorf("database host, user, and dbname are required")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if err := c.Mail.validate(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Reminder.Subject) == "" {
		return fmt.Errorf("reminder subject is required")
	}

	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{"reminder": c.Reminder.Schedule, "report": c.Report.Schedule} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", name, spec, err)
		}
	}

	return nil
}

func (c *MailConfig) validate() error {
	gmailCreds := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""

	switch c.Transport {
	case "imap":
		if c.IMAPHost == "" || c.IMAPUser == "" || c.IMAPPassword == "" {
			return fmt.Errorf("IMAP host and credentials are required when using IMAP")
		}
	case "gmail":
		if !gmailCreds {
			return fmt.Errorf("Gmail OAuth2 credentials are required when using the Gmail API")
		}
	default:
		return fmt.Errorf("unsupported mail transport %q", c.Transport)
	}

	switch c.Sender {
	case "smtp":
		if c.SMTPHost == "" || c.FromAddress == "" {
			return fmt.Errorf("SMTP host and from address are required when sending via SMTP")
		}
	case "gmail":
		if !gmailCreds {
			return fmt.Errorf("Gmail OAuth2 credentials are required when sending via the Gmail API")
		}
	default:
		return fmt.Errorf("unsupported mail sender %q", c.Sender)
	}

	return nil
}

// ConfigureLogging applies the logging section to the logrus standard logger.
func (c *LoggingConfig) ConfigureLogging() error {
	if c.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	logrus.SetLevel(level)
	return nil
}
