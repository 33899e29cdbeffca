package handler

import "time"

// PersonRequest is the body of POST /people
type PersonRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// TaskRequest is the body of POST /tasks
type TaskRequest struct {
	TaskName       string `json:"task_name" binding:"required"`
	RecurrenceDays int    `json:"recurrence_days" binding:"required,min=1"`
}

// ReplyRequest is a reply submitted by hand instead of through the mailbox
type ReplyRequest struct {
	MessageID string `json:"message_id"`
	From      string `json:"from" binding:"required"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// CompletionResponse is a completion with dates rendered as YYYY-MM-DD
type CompletionResponse struct {
	PersonID       uint      `json:"person_id"`
	TaskID         uint      `json:"task_id"`
	CompletionDate string    `json:"completion_date"`
	NextDueDate    string    `json:"next_due_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DueTaskResponse is one overdue (person, task) pair
type DueTaskResponse struct {
	PersonID    uint   `json:"person_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TaskID      uint   `json:"task_id"`
	TaskName    string `json:"task_name"`
	NextDueDate string `json:"next_due_date"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
