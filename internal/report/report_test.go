package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taskminder/internal/mailer"
	"taskminder/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	people = []model.Person{{ID: 2, Name: "Alice"}, {ID: 1, Name: "Bob"}}
	tasks  = []model.Task{{ID: 5, TaskName: "Data Privacy"}, {ID: 3, TaskName: "Fire Safety Training"}}
	done   = []model.TaskCompletion{
		{PersonID: 2, TaskID: 3, CompletionDate: day(2023, time.October, 24)},
		{PersonID: 1, TaskID: 5, CompletionDate: day(2023, time.September, 1)},
		{PersonID: 9, TaskID: 5, CompletionDate: day(2023, time.September, 1)},
	}
)

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetName, ref)
	require.NoError(t, err)
	return v
}

func TestBuildLayout(t *testing.T) {
	f, err := Build(people, tasks, done)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	assert.Equal(t, "", cell(t, f, "A1"))
	assert.Equal(t, "Data Privacy", cell(t, f, "B1"))
	assert.Equal(t, "Fire Safety Training", cell(t, f, "C1"))
	assert.Equal(t, "Alice", cell(t, f, "A2"))
	assert.Equal(t, "Bob", cell(t, f, "A3"))

	assert.Equal(t, "", cell(t, f, "B2"))
	assert.Equal(t, "2023-10-24", cell(t, f, "C2"))
	assert.Equal(t, "2023-09-01", cell(t, f, "B3"))
	assert.Equal(t, "", cell(t, f, "C3"))

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	width, err := f.GetColWidth(SheetName, "C")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Fire Safety Training")+2), width)

	styleID, err := f.GetCellStyle(SheetName, "B1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

type fakeSource struct {
	people []model.Person
	tasks  []model.Task
	err    error
}

func (s *fakeSource) ListPeople(ctx context.Context) ([]model.Person, error) {
	return s.people, s.err
}

func (s *fakeSource) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.tasks, nil
}

func (s *fakeSource) ListCompletions(ctx context.Context, offset, limit int) ([]model.TaskCompletion, error) {
	return done, nil
}

type fakeSender struct {
	sent []*mailer.Outgoing
}

func (f *fakeSender) Send(ctx context.Context, msg *mailer.Outgoing) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestGenerateReadsBack(t *testing.T) {
	svc := NewService(&fakeSource{people: people, tasks: tasks}, &fakeSender{}, nil, "", nil)
	assert.Equal(t, "task_report.xlsx", svc.FileName())

	data, err := svc.Generate(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "2023-10-24", cell(t, f, "C2"))
}

func TestGenerateWithoutData(t *testing.T) {
	svc := NewService(&fakeSource{tasks: tasks}, &fakeSender{}, nil, "", nil)
	_, err := svc.Generate(context.Background())
	assert.ErrorIs(t, err, ErrNoData)

	svc = NewService(&fakeSource{err: errors.New("boom")}, &fakeSender{}, nil, "", nil)
	_, err = svc.Generate(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestSendMailsAdmins(t *testing.T) {
	sender := &fakeSender{}
	admins := []string{"admin1@example.com", "admin2@example.com"}
	svc := NewService(&fakeSource{people: people, tasks: tasks}, sender, admins, "weekly.xlsx", nil)

	require.NoError(t, svc.Send(context.Background()))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, admins, msg.To)
	assert.Equal(t, "Task Completion Report", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "weekly.xlsx", msg.Attachments[0].Filename)
	assert.Equal(t, ContentType, msg.Attachments[0].ContentType)
	assert.NotEmpty(t, msg.Attachments[0].Data)
}

func TestSendRequiresAdmins(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(&fakeSource{people: people, tasks: tasks}, sender, nil, "", nil)
	assert.Error(t, svc.Send(context.Background()))
	assert.Empty(t, sender.sent)
}
