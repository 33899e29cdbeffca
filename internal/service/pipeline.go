package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskminder/internal/dates"
	"taskminder/internal/metrics"
	"taskminder/internal/model"
	"taskminder/internal/reply"
)

// Fetcher is the inbound mail transport as seen by the pipeline.
type Fetcher interface {
	FetchUnseen(ctx context.Context) ([]model.EmailMessage, error)
	MarkSeen(ctx context.Context, id string) error
}

// ErrDatastore marks a datastore failure. It aborts the run before the
// message at hand is marked seen.
var ErrDatastore = errors.New("datastore unavailable")

// Journal records consumed messages and per-line outcomes.
type Journal interface {
	Ping(ctx context.Context) error
	IsMessageProcessed(ctx context.Context, messageID string) (bool, error)
	MarkMessageProcessed(ctx context.Context, messageID string) error
	LogNotice(ctx context.Context, entry *model.IngestLog) error
}

// Notice is the outcome of one line (or of the whole message when it was
// skipped).
type Notice struct {
	Line   string `json:"line"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Outcome describes what processing one message did.
type Outcome struct {
	MessageID string                 `json:"message_id"`
	Sender    string                 `json:"sender"`
	Accepted  bool                   `json:"accepted"`
	Duplicate bool                   `json:"duplicate"`
	Applied   []model.TaskCompletion `json:"applied"`
	Notices   []Notice               `json:"notices"`
}

// RunSummary totals one pass over the mailbox.
type RunSummary struct {
	RunID    string        `json:"run_id"`
	Fetched  int           `json:"fetched"`
	Consumed int           `json:"consumed"`
	Accepted int           `json:"accepted"`
	Applied  int           `json:"applied"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Pipeline turns reminder replies into completion updates.
type Pipeline struct {
	filter   *reply.SubjectFilter
	dates    *dates.Resolver
	resolver *CompletionResolver
	updater  *RecurrenceUpdater
	journal  Journal
	metrics  *metrics.Metrics
}

// NewPipeline wires the pipeline. journal and m may be nil.
func NewPipeline(reminderSubject string, registry Registry, store CompletionStore, journal Journal, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		filter:   reply.NewSubjectFilter(reminderSubject),
		dates:    dates.NewResolver(),
		resolver: NewCompletionResolver(registry),
		updater:  NewRecurrenceUpdater(store),
		journal:  journal,
		metrics:  m,
	}
}

// Run processes every unseen message once and marks each one seen, whatever
// happened to its lines. Transport and datastore failures are returned as
// errors; the message being handled and every later one stay unseen.
func (p *Pipeline) Run(ctx context.Context, f Fetcher) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	log := logrus.WithField("run_id", summary.RunID)
	start := time.Now()

	if p.metrics != nil {
		p.metrics.PullCount.Inc()
	}

	if p.journal != nil {
		if err := p.journal.Ping(ctx); err != nil {
			if p.metrics != nil {
				p.metrics.PullFailures.Inc()
			}
			return summary, fmt.Errorf("%w: %w", ErrDatastore, err)
		}
	}

	messages, err := f.FetchUnseen(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PullFailures.Inc()
		}
		return summary, fmt.Errorf("failed to fetch unseen messages: %w", err)
	}
	summary.Fetched = len(messages)
	log.Infof("Fetched %d unseen messages", len(messages))

	for _, msg := range messages {
		select {
		case <-ctx.Done():
			log.Warn("Run cancelled, leaving remaining messages unseen")
			summary.Duration = time.Since(start)
			return summary, ctx.Err()
		default:
		}

		outcome, err := p.consume(ctx, msg)
		if err != nil {
			log.WithField("message_id", msg.ID).Errorf("Aborting run, message left unseen: %v", err)
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("failed to process message %s: %w", msg.ID, err)
		}
		if outcome.Accepted {
			summary.Accepted++
		}
		summary.Applied += len(outcome.Applied)
		for _, n := range outcome.Notices {
			if n.Status != model.StatusApplied && n.Status != model.StatusSkipped {
				summary.Failed++
			}
		}

		if err := f.MarkSeen(ctx, msg.ID); err != nil {
			log.WithField("message_id", msg.ID).Errorf("Failed to mark message as seen: %v", err)
			continue
		}
		summary.Consumed++
		if p.metrics != nil {
			p.metrics.MessagesConsumed.Inc()
		}
	}

	summary.Duration = time.Since(start)
	if p.metrics != nil {
		p.metrics.ProcessingTime.Observe(summary.Duration.Seconds())
	}
	log.WithFields(logrus.Fields{
		"consumed": summary.Consumed,
		"accepted": summary.Accepted,
		"applied":  summary.Applied,
		"failed":   summary.Failed,
	}).Infof("Reply processing completed in %v", summary.Duration)
	return summary, nil
}

// consume applies a message unless the journal says it was already applied.
func (p *Pipeline) consume(ctx context.Context, msg model.EmailMessage) (Outcome, error) {
	key := msg.Key()
	if p.journal != nil {
		processed, err := p.journal.IsMessageProcessed(ctx, key)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %w", ErrDatastore, err)
		}
		if processed {
			logrus.WithField("message_id", key).Debug("Message already processed, skipping")
			return Outcome{MessageID: key, Sender: msg.From, Duplicate: true}, nil
		}
	}

	outcome, err := p.Process(ctx, msg)
	if err != nil {
		return outcome, err
	}

	if p.journal != nil {
		if err := p.journal.MarkMessageProcessed(ctx, key); err != nil {
			return outcome, fmt.Errorf("%w: %w", ErrDatastore, err)
		}
	}
	return outcome, nil
}

// Process runs one message through subject filter, line parser, resolver and
// updater, noting each line in the order it appears. Per-line failures become
// notices and never stop the sibling lines; only an ErrDatastore failure is
// returned.
func (p *Pipeline) Process(ctx context.Context, msg model.EmailMessage) (Outcome, error) {
	outcome := Outcome{MessageID: msg.Key(), Sender: msg.From}
	log := logrus.WithFields(logrus.Fields{"message_id": outcome.MessageID, "sender": msg.From})

	if !p.filter.Accept(msg.Subject) {
		log.Infof("Ignoring message with unexpected subject: %s", msg.Subject)
		err := p.note(ctx, msg, &outcome, Notice{Status: model.StatusSkipped, Detail: "unexpected subject: " + msg.Subject})
		return outcome, err
	}
	outcome.Accepted = true
	if p.metrics != nil {
		p.metrics.RepliesAccepted.Inc()
	}

	for _, line := range reply.Parse(msg.Body).Lines {
		var err error
		if line.Completion == nil {
			err = p.note(ctx, msg, &outcome, Notice{Line: line.Text, Status: model.StatusUnrecognized, Detail: "unrecognized line format"})
		} else {
			err = p.applyLine(ctx, msg, *line.Completion, &outcome)
		}
		if err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

func (p *Pipeline) applyLine(ctx context.Context, msg model.EmailMessage, c reply.Completion, outcome *Outcome) error {
	completed, err := p.dates.Resolve(c.DateText)
	if err != nil {
		return p.note(ctx, msg, outcome, Notice{Line: c.Line, Status: model.StatusInvalidDate, Detail: fmt.Sprintf("invalid date %q", c.DateText)})
	}

	person, task, err := p.resolver.Resolve(ctx, msg.From, c.TaskName)
	switch {
	case errors.Is(err, ErrUnknownSender):
		return p.note(ctx, msg, outcome, Notice{Line: c.Line, Status: model.StatusUnknownSender, Detail: err.Error()})
	case errors.Is(err, ErrUnknownTask):
		return p.note(ctx, msg, outcome, Notice{Line: c.Line, Status: model.StatusUnknownTask, Detail: err.Error()})
	case err != nil:
		return err
	}

	completion, err := p.updater.Apply(ctx, person.ID, task.ID, task.RecurrenceDays, completed)
	if err != nil {
		return p.note(ctx, msg, outcome, Notice{Line: c.Line, Status: model.StatusWriteFailed, Detail: err.Error()})
	}

	outcome.Applied = append(outcome.Applied, completion)
	detail := fmt.Sprintf("%s completed %s, next due %s", task.TaskName,
		completion.CompletionDate.Format(model.DateLayout), completion.NextDueDate.Format(model.DateLayout))
	return p.note(ctx, msg, outcome, Notice{Line: c.Line, Status: model.StatusApplied, Detail: detail})
}

// note records a notice on the outcome, in the log and in the journal. A
// journal write failure is returned as ErrDatastore.
func (p *Pipeline) note(ctx context.Context, msg model.EmailMessage, outcome *Outcome, n Notice) error {
	outcome.Notices = append(outcome.Notices, n)

	entry := logrus.WithFields(logrus.Fields{
		"message_id": outcome.MessageID,
		"sender":     msg.From,
		"line":       n.Line,
		"status":     n.Status,
	})
	switch n.Status {
	case model.StatusApplied:
		entry.Infof("Updated task completion: %s", n.Detail)
		if p.metrics != nil {
			p.metrics.LinesApplied.Inc()
		}
	case model.StatusSkipped:
		entry.Debug(n.Detail)
	default:
		entry.Warn(n.Detail)
		if p.metrics != nil {
			p.metrics.LineFailures.WithLabelValues(n.Status).Inc()
		}
	}

	if p.journal == nil {
		return nil
	}
	err := p.journal.LogNotice(ctx, &model.IngestLog{
		MessageID: outcome.MessageID,
		Sender:    msg.From,
		Line:      n.Line,
		Status:    n.Status,
		Detail:    n.Detail,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to journal notice: %w", ErrDatastore, err)
	}
	return nil
}
