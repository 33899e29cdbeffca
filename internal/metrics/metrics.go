package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	PullCount        prometheus.Counter
	PullFailures     prometheus.Counter
	MessagesConsumed prometheus.Counter
	RepliesAccepted  prometheus.Counter
	LinesApplied     prometheus.Counter
	LineFailures     *prometheus.CounterVec
	RemindersSent    prometheus.Counter
	ReportRuns       prometheus.Counter
	ProcessingTime   prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PullCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskminder_pull_count",
			Help: "Total number of mailbox fetch operations",
		}),
		PullFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskminder_pull_failures",
			Help: "Total number of fetch operations that failed to reach the mail server",
		}),
		MessagesConsumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskminder_messages_consumed",
			Help: "Total number of inbound messages examined and marked seen",
		}),
		RepliesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskminder_replies_accepted",
			Help: "Total number of messages whose subject matched the reminder",
		}),
		LinesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskminder_lines_applied",
			Help: "Total number of completion lines written to the store",
		}),
		LineFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskminder_line_failures",
			Help: "Completion lines skipped, by reason",
		}, []string{"reason"}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskminder_reminders_sent",
			Help: "Total number of reminder emails sent",
		}),
		ReportRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskminder_report_runs",
			Help: "Total number of completion reports generated",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskminder_processing_duration_seconds",
			Help:    "Time spent processing one batch of replies",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
