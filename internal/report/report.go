// Package report renders the person-by-task completion spreadsheet and mails
// it to administrators.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"taskminder/internal/mailer"
	"taskminder/internal/metrics"
	"taskminder/internal/model"
)

const (
	// SheetName is the title of the only worksheet
	SheetName = "Task Completion Report"
	// ContentType is the MIME type of the workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	subject = "Task Completion Report"
	body    = "Please find the attached task completion report."
)

// ErrNoData is returned when there are no people or no tasks to report on.
var ErrNoData = errors.New("no people or tasks data to generate report")

// Source provides the rows of the report
type Source interface {
	ListPeople(ctx context.Context) ([]model.Person, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListCompletions(ctx context.Context, offset, limit int) ([]model.TaskCompletion, error)
}

// Build lays tasks out across row 1 from column B and people down column A
// from row 2; each intersection holds the completion date of that pair.
func Build(people []model.Person, tasks []model.Task, completions []model.TaskCompletion) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	name, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	widths := make(map[int]int)
	set := func(col, row int, value string, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, value); err != nil {
			return err
		}
		if n := utf8.RuneCountInString(value); n > widths[col] {
			widths[col] = n
		}
		return f.SetCellStyle(SheetName, cell, cell, style)
	}

	taskCol := make(map[uint]int, len(tasks))
	for i, t := range tasks {
		taskCol[t.ID] = i + 2
		if err := set(i+2, 1, t.TaskName, header); err != nil {
			return nil, err
		}
	}
	personRow := make(map[uint]int, len(people))
	for i, p := range people {
		personRow[p.ID] = i + 2
		if err := set(1, i+2, p.Name, name); err != nil {
			return nil, err
		}
	}

	for _, c := range completions {
		row, okRow := personRow[c.PersonID]
		col, okCol := taskCol[c.TaskID]
		if !okRow || !okCol {
			continue
		}
		if err := set(col, row, c.CompletionDate.Format(model.DateLayout), centered); err != nil {
			return nil, err
		}
	}

	for col, width := range widths {
		letter, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, letter, letter, float64(width+2)); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Service generates and mails the report
type Service struct {
	source   Source
	sender   mailer.Sender
	admins   []string
	fileName string
	metrics  *metrics.Metrics
}

// NewService creates a report service. m may be nil.
func NewService(source Source, sender mailer.Sender, admins []string, fileName string, m *metrics.Metrics) *Service {
	if fileName == "" {
		fileName = "task_report.xlsx"
	}
	return &Service{source: source, sender: sender, admins: admins, fileName: fileName, metrics: m}
}

// FileName is the attachment and download name of the workbook
func (s *Service) FileName() string {
	return s.fileName
}

// Generate builds the workbook from the current data
func (s *Service) Generate(ctx context.Context) ([]byte, error) {
	people, err := s.source.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}
	tasks, err := s.source.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	if len(people) == 0 || len(tasks) == 0 {
		return nil, ErrNoData
	}
	completions, err := s.source.ListCompletions(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task completions: %w", err)
	}

	f, err := Build(people, tasks, completions)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ReportRuns.Inc()
	}
	logrus.WithFields(logrus.Fields{"people": len(people), "tasks": len(tasks)}).Info("Report generated")
	return buf.Bytes(), nil
}

// Send generates the report and mails it to the administrators
func (s *Service) Send(ctx context.Context) error {
	if len(s.admins) == 0 {
		return fmt.Errorf("no administrator addresses configured")
	}

	data, err := s.Generate(ctx)
	if err != nil {
		return err
	}

	msg := &mailer.Outgoing{
		To:      s.admins,
		Subject: subject,
		Body:    body,
		Attachments: []mailer.Attachment{{
			Filename:    s.fileName,
			ContentType: ContentType,
			Data:        data,
		}},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	logrus.Infof("Report emailed to administrators: %v", s.admins)
	return nil
}
