// Package reminder emails every person the tasks whose next due date has
// passed, with instructions for replying.
package reminder

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"

	"taskminder/internal/mailer"
	"taskminder/internal/metrics"
	"taskminder/internal/model"
)

// DueLister lists completions due on or before a date.
type DueLister interface {
	DueCompletions(ctx context.Context, asOf time.Time) ([]model.DueTask, error)
}

// Recipient is one person together with the tasks they have due.
type Recipient struct {
	PersonID uint
	Name     string
	Email    string
	Tasks    []model.DueTask
}

var bodyTemplate = template.Must(template.New("reminder").Parse(`Dear {{.Name}},

This is a reminder that you have the following tasks due:

{{range .Tasks}}- {{.TaskName}} (Due Date: {{.NextDueDate.Format "2006-01-02"}})
{{end}}

To report completion of these tasks, please reply to this email and include the lines:

Completed: [Task Name] on YYYY-MM-DD

Please replace [Task Name] with the actual task name and YYYY-MM-DD with the date you completed the task. You can report multiple tasks in the same reply by including multiple lines.

Example:

Completed: Fire Safety Training on 2023-10-24
Completed: Data Privacy Compliance on 2023-10-25

Thank you for your attention to these tasks.

Best regards,
Task Management System
`))

// Service sends reminder emails
type Service struct {
	due     DueLister
	sender  mailer.Sender
	subject string
	metrics *metrics.Metrics
}

// NewService creates a reminder service. m may be nil.
func NewService(due DueLister, sender mailer.Sender, subject string, m *metrics.Metrics) *Service {
	return &Service{due: due, sender: sender, subject: subject, metrics: m}
}

// GroupByPerson groups due tasks by person, keeping the order in which each
// person first appears.
func GroupByPerson(tasks []model.DueTask) []Recipient {
	var out []Recipient
	index := make(map[uint]int)
	for _, t := range tasks {
		i, ok := index[t.PersonID]
		if !ok {
			i = len(out)
			index[t.PersonID] = i
			out = append(out, Recipient{PersonID: t.PersonID, Name: t.Name, Email: t.Email})
		}
		out[i].Tasks = append(out[i].Tasks, t)
	}
	return out
}

// Body renders the reminder text for r
func Body(r Recipient) (string, error) {
	var b strings.Builder
	if err := bodyTemplate.Execute(&b, r); err != nil {
		return "", fmt.Errorf("failed to render reminder: %w", err)
	}
	return b.String(), nil
}

// SendDue sends one reminder to every person with tasks due on or before
// asOf. A failed send is logged and does not stop the others. It returns the
// number of reminders sent.
func (s *Service) SendDue(ctx context.Context, asOf time.Time) (int, error) {
	tasks, err := s.due.DueCompletions(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to load due tasks: %w", err)
	}
	if len(tasks) == 0 {
		logrus.Info("No tasks due at this time")
		return 0, nil
	}

	sent := 0
	for _, r := range GroupByPerson(tasks) {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		log := logrus.WithFields(logrus.Fields{"person_id": r.PersonID, "email": r.Email, "tasks": len(r.Tasks)})
		body, err := Body(r)
		if err != nil {
			log.Error(err)
			continue
		}

		msg := &mailer.Outgoing{To: []string{r.Email}, Subject: s.subject, Body: body}
		if err := s.sender.Send(ctx, msg); err != nil {
			log.Errorf("Failed to send reminder: %v", err)
			continue
		}

		log.Infof("Reminder sent to %s", r.Name)
		sent++
		if s.metrics != nil {
			s.metrics.RemindersSent.Inc()
		}
	}

	return sent, nil
}
