package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"taskminder/internal/config"
	"taskminder/internal/db"
	"taskminder/internal/fetcher"
	"taskminder/internal/handler"
	"taskminder/internal/mailer"
	"taskminder/internal/metrics"
	"taskminder/internal/reminder"
	"taskminder/internal/report"
	"taskminder/internal/repository"
	"taskminder/internal/router"
	"taskminder/internal/scheduler"
	"taskminder/internal/service"
)

// App is the assembled service
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Fetcher   fetcher.MailFetcher
	Pipeline  *service.Pipeline
	Scheduler *scheduler.Scheduler
	Router    *gin.Engine
}

// New wires every component from cfg. Metrics are registered on reg.
func New(ctx context.Context, cfg *config.Config, reg *prometheus.Registry) (*App, error) {
	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repo := repository.New(dbConn)
	m := metrics.NewMetrics(reg)

	f, err := fetcher.New(ctx, &cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s fetcher: %w", cfg.Mail.Transport, err)
	}
	logrus.Infof("Using %s for email fetching", cfg.Mail.Transport)

	sender, err := mailer.New(ctx, &cfg.Mail)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create %s sender: %w", cfg.Mail.Sender, err)
	}
	logrus.Infof("Using %s for email sending", cfg.Mail.Sender)

	pipeline := service.NewPipeline(cfg.Reminder.Subject, repo, repo, repo, m)
	reminders := reminder.NewService(repo, sender, cfg.Reminder.Subject, m)
	reports := report.NewService(repo, sender, cfg.Report.AdminEmails, cfg.Report.FileName, m)

	var reportJob scheduler.ReportSender
	if len(cfg.Report.AdminEmails) > 0 {
		reportJob = reports
	} else {
		logrus.Warn("No admin emails configured, scheduled reports are disabled")
	}
	sched := scheduler.NewScheduler(&cfg.Scheduler, pipeline, f, reminders, reportJob)

	h := handler.NewHandlers(repo, pipeline, reports, sched, reg)

	return &App{
		Config:    cfg,
		DB:        dbConn,
		Fetcher:   f,
		Pipeline:  pipeline,
		Scheduler: sched,
		Router:    router.SetupRouter(h),
	}, nil
}

// Close releases the mailbox connection
func (a *App) Close() error {
	return a.Fetcher.Close()
}

// Run initializes and starts the application. With --once it processes the
// mailbox a single time and returns instead of serving.
func Run(fs *pflag.FlagSet) error {
	cfg, err := config.LoadConfig(fs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Logging.ConfigureLogging(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logrus.Info("Starting taskminder")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logrus.Errorf("Failed to close fetcher: %v", err)
		}
	}()

	if once, _ := fs.GetBool("once"); once {
		summary, err := a.Scheduler.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("reply processing failed: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"run_id":   summary.RunID,
			"consumed": summary.Consumed,
			"applied":  summary.Applied,
			"failed":   summary.Failed,
		}).Info("Reply processing completed")
		return nil
	}

	return a.Serve(ctx)
}

// Serve starts the scheduler and the HTTP server and blocks until ctx is
// cancelled, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + a.Config.Server.Port,
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting HTTP server on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		logrus.Errorf("HTTP server error: %v", serveErr)
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Scheduler.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	a.Scheduler.Wait()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return serveErr
}

// ExitOnError logs err and exits non-zero
func ExitOnError(err error) {
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
