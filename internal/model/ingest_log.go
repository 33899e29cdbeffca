package model

import "time"

// Line outcomes recorded in the ingest log
const (
	StatusApplied       = "applied"
	StatusUnrecognized  = "unrecognized"
	StatusInvalidDate   = "invalid_date"
	StatusUnknownSender = "unknown_sender"
	StatusUnknownTask   = "unknown_task"
	StatusWriteFailed   = "write_failed"
	StatusSkipped       = "skipped"
)

// IngestLog is one journaled outcome of reply processing, usually one per line
type IngestLog struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID string    `json:"message_id" gorm:"type:varchar(255);not null;index"`
	Sender    string    `json:"sender" gorm:"type:varchar(255)"`
	Line      string    `json:"line" gorm:"type:text"`
	Status    string    `json:"status" gorm:"type:varchar(50);not null;index"`
	Detail    string    `json:"detail" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for IngestLog
func (IngestLog) TableName() string {
	return "ingest_logs"
}
