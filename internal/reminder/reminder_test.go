package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskminder/internal/mailer"
	"taskminder/internal/metrics"
	"taskminder/internal/model"
)

type fakeDue struct {
	tasks []model.DueTask
	err   error
	asOf  time.Time
}

func (f *fakeDue) DueCompletions(ctx context.Context, asOf time.Time) ([]model.DueTask, error) {
	f.asOf = asOf
	return f.tasks, f.err
}

type fakeSender struct {
	sent []*mailer.Outgoing
	fail map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, msg *mailer.Outgoing) error {
	if f.fail[msg.To[0]] {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var dueTasks = []model.DueTask{
	{PersonID: 1, Name: "Alice", Email: "alice@example.com", TaskID: 1, TaskName: "Fire Safety Training", NextDueDate: day(2023, time.October, 1)},
	{PersonID: 1, Name: "Alice", Email: "alice@example.com", TaskID: 2, TaskName: "Data Privacy", NextDueDate: day(2023, time.October, 20)},
	{PersonID: 2, Name: "Bob", Email: "bob@example.com", TaskID: 2, TaskName: "Data Privacy", NextDueDate: day(2023, time.September, 30)},
}

func TestGroupByPerson(t *testing.T) {
	groups := GroupByPerson(dueTasks)
	require.Len(t, groups, 2)
	assert.Equal(t, "alice@example.com", groups[0].Email)
	assert.Len(t, groups[0].Tasks, 2)
	assert.Equal(t, "Bob", groups[1].Name)
	assert.Len(t, groups[1].Tasks, 1)
}

func TestBody(t *testing.T) {
	body, err := Body(GroupByPerson(dueTasks)[0])
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(body, "Dear Alice,\n"))
	assert.Contains(t, body, "- Fire Safety Training (Due Date: 2023-10-01)\n- Data Privacy (Due Date: 2023-10-20)\n\n")
	assert.Contains(t, body, "Completed: [Task Name] on YYYY-MM-DD")
	assert.Contains(t, body, "Completed: Fire Safety Training on 2023-10-24")
}

func TestSendDue(t *testing.T) {
	due := &fakeDue{tasks: dueTasks}
	sender := &fakeSender{}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := NewService(due, sender, "Task Reminder - Tasks Due", m)

	asOf := day(2023, time.October, 24)
	n, err := svc.SendDue(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, asOf, due.asOf)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"alice@example.com"}, sender.sent[0].To)
	assert.Equal(t, "Task Reminder - Tasks Due", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[1].Body, "Dear Bob,")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemindersSent))
}

func TestSendDueContinuesAfterFailure(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"alice@example.com": true}}
	svc := NewService(&fakeDue{tasks: dueTasks}, sender, "Task Reminder - Tasks Due", nil)

	n, err := svc.SendDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"bob@example.com"}, sender.sent[0].To)
}

func TestSendDueNothingDue(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(&fakeDue{}, sender, "Task Reminder - Tasks Due", nil)

	n, err := svc.SendDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sender.sent)
}

func TestSendDueQueryError(t *testing.T) {
	svc := NewService(&fakeDue{err: errors.New("connection refused")}, &fakeSender{}, "x", nil)

	_, err := svc.SendDue(context.Background(), time.Now())
	assert.Error(t, err)
}
