package model

import "time"

// Task is a recurring obligation. RecurrenceDays is the number of days after
// a completion before the task is due again.
type Task struct {
	ID             uint      `json:"task_id" gorm:"column:task_id;primaryKey;autoIncrement"`
	TaskName       string    `json:"task_name" gorm:"type:varchar(255);not null;index"`
	RecurrenceDays int       `json:"recurrence_days" gorm:"column:recurrence_period;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}
