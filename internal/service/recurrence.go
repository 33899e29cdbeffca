package service

import (
	"context"
	"time"

	"taskminder/internal/model"
)

// CompletionStore persists completions keyed by (person, task).
type CompletionStore interface {
	UpsertCompletion(ctx context.Context, completion *model.TaskCompletion) error
}

// RecurrenceUpdater records a completion and moves the next due date.
type RecurrenceUpdater struct {
	store CompletionStore
}

func NewRecurrenceUpdater(store CompletionStore) *RecurrenceUpdater {
	return &RecurrenceUpdater{store: store}
}

// Apply sets the completion date of the (person, task) pair and derives
// next_due_date = completed + recurrenceDays. Repeating the same input leaves
// a single, unchanged row.
func (u *RecurrenceUpdater) Apply(ctx context.Context, personID, taskID uint, recurrenceDays int, completed time.Time) (model.TaskCompletion, error) {
	completion := model.NewTaskCompletion(personID, taskID, completed, recurrenceDays)
	if err := u.store.UpsertCompletion(ctx, &completion); err != nil {
		return model.TaskCompletion{}, err
	}
	return completion, nil
}
