package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"taskminder/internal/config"
	"taskminder/internal/service"
)

// ErrRunInProgress is returned when an ingestion run is requested while
// another one is still active.
var ErrRunInProgress = errors.New("an ingestion run is already in progress")

// Ingester processes the replies waiting in a mailbox.
type Ingester interface {
	Run(ctx context.Context, f service.Fetcher) (service.RunSummary, error)
}

// ReminderSender emails reminders for tasks due on or before a date.
type ReminderSender interface {
	SendDue(ctx context.Context, asOf time.Time) (int, error)
}

// ReportSender mails the completion report.
type ReportSender interface {
	Send(ctx context.Context) error
}

// Status is a snapshot of the scheduler state
type Status struct {
	Running     bool                `json:"running"`
	InProgress  bool                `json:"in_progress"`
	Interval    int                 `json:"interval_minutes"`
	NextRun     time.Time           `json:"next_run"`
	LastRun     time.Time           `json:"last_run"`
	LastSummary *service.RunSummary `json:"last_summary,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
}

// Scheduler runs reply ingestion every few minutes and, when configured,
// reminders and reports on their own cron schedules. At most one ingestion
// run is active at any time.
type Scheduler struct {
	config    *config.SchedulerConfig
	ingester  Ingester
	fetcher   service.Fetcher
	reminders ReminderSender
	reports   ReportSender

	cron    *cron.Cron
	entryID cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// run serialises ingestion runs
	run sync.Mutex

	mu          sync.RWMutex
	isRunning   bool
	lastRun     time.Time
	lastSummary *service.RunSummary
	lastErr     error
}

// NewScheduler creates a new scheduler. reminders and reports may be nil.
func NewScheduler(cfg *config.SchedulerConfig, ingester Ingester, fetcher service.Fetcher, reminders ReminderSender, reports ReportSender) *Scheduler {
	return &Scheduler{
		config:    cfg,
		ingester:  ingester,
		fetcher:   fetcher,
		reminders: reminders,
		reports:   reports,
	}
}

// Start schedules the jobs. A stopped scheduler can be started again.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if s.config.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	c := cron.New(cron.WithSeconds())
	entryID, err := c.AddFunc(fmt.Sprintf("@every %dm", s.config.IntervalMinutes), s.processReplies)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	if s.reminders != nil && s.config.ReminderSpec != "" {
		if _, err := c.AddFunc(s.config.ReminderSpec, s.sendReminders); err != nil {
			return fmt.Errorf("failed to add reminder job: %w", err)
		}
	}
	if s.reports != nil && s.config.ReportSpec != "" {
		if _, err := c.AddFunc(s.config.ReportSpec, s.sendReport); err != nil {
			return fmt.Errorf("failed to add report job: %w", err)
		}
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = c
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop cancels running jobs and waits up to 30 seconds for them to return
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	ctx := s.cron.Stop()
	s.isRunning = false
	// running jobs take mu to record their result
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Scheduler) processReplies() {
	if _, err := s.RunOnce(s.jobContext()); err != nil {
		logrus.Errorf("Reply processing failed: %v", err)
	}
}

func (s *Scheduler) sendReminders() {
	if _, err := s.SendReminders(s.jobContext()); err != nil {
		logrus.Errorf("Failed to send reminders: %v", err)
	}
}

func (s *Scheduler) sendReport() {
	if err := s.SendReport(s.jobContext()); err != nil {
		logrus.Errorf("Failed to send report: %v", err)
	}
}

// RunOnce processes the mailbox now. It returns ErrRunInProgress instead of
// waiting when another run is active.
func (s *Scheduler) RunOnce(ctx context.Context) (service.RunSummary, error) {
	if !s.run.TryLock() {
		logrus.Warn("Reply processing already in progress, skipping")
		return service.RunSummary{}, ErrRunInProgress
	}
	defer s.run.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()

	logrus.Info("Starting reply processing cycle")
	summary, err := s.ingester.Run(ctx, s.fetcher)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	if err == nil {
		s.lastSummary = &summary
	}
	s.mu.Unlock()

	return summary, err
}

// SendReminders sends reminders for everything due today
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	if s.reminders == nil {
		return 0, fmt.Errorf("reminders are not configured")
	}
	s.wg.Add(1)
	defer s.wg.Done()

	n, err := s.reminders.SendDue(ctx, time.Now())
	if err != nil {
		return n, err
	}
	logrus.Infof("Sent %d reminders", n)
	return n, nil
}

// SendReport mails the completion report
func (s *Scheduler) SendReport(ctx context.Context) error {
	if s.reports == nil {
		return fmt.Errorf("reports are not configured")
	}
	s.wg.Add(1)
	defer s.wg.Done()

	return s.reports.Send(ctx)
}

// GetNextRun returns the time of the next scheduled ingestion run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time the last ingestion run finished
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// Status returns a snapshot of the scheduler state
func (s *Scheduler) Status() Status {
	inProgress := !s.run.TryLock()
	if !inProgress {
		s.run.Unlock()
	}

	st := Status{
		Running:    s.IsRunning(),
		InProgress: inProgress,
		Interval:   s.config.IntervalMinutes,
		NextRun:    s.GetNextRun(),
		LastRun:    s.GetLastRun(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	st.LastSummary = s.lastSummary
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Wait waits for jobs started through this scheduler to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
