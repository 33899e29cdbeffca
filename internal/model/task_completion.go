package model

import "time"

// DateLayout is the wire and display layout of calendar dates.
const DateLayout = "2006-01-02"

// TaskCompletion records the last reported completion of a task by a person.
// There is at most one row per (PersonID, TaskID); NextDueDate is always
// CompletionDate plus the task's recurrence at the time of the update.
type TaskCompletion struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PersonID       uint      `json:"person_id" gorm:"not null;uniqueIndex:idx_task_completion_person_task"`
	TaskID         uint      `json:"task_id" gorm:"not null;uniqueIndex:idx_task_completion_person_task"`
	CompletionDate time.Time `json:"completion_date" gorm:"type:date;not null"`
	NextDueDate    time.Time `json:"next_due_date" gorm:"type:date;not null;index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for TaskCompletion
func (TaskCompletion) TableName() string {
	return "task_completion"
}

// NewTaskCompletion derives the next due date from the completion date.
func NewTaskCompletion(personID, taskID uint, completed time.Time, recurrenceDays int) TaskCompletion {
	completed = DateOf(completed)
	return TaskCompletion{
		PersonID:       personID,
		TaskID:         taskID,
		CompletionDate: completed,
		NextDueDate:    completed.AddDate(0, 0, recurrenceDays),
	}
}

// DateOf strips the time of day, keeping the calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueTask is a completion whose next due date has passed, joined with the
// person and task it belongs to.
type DueTask struct {
	PersonID    uint      `json:"person_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	TaskID      uint      `json:"task_id"`
	TaskName    string    `json:"task_name"`
	NextDueDate time.Time `json:"next_due_date"`
}
