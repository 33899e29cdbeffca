package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskminder/internal/model"
)

// ErrNotFound is returned by point lookups that match no row.
var ErrNotFound = errors.New("record not found")

// Repository is the datastore access layer for people, tasks, completions
// and the ingestion journal.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying connection for health checks.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Ping reports whether the datastore is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("datastore unreachable: %w", err)
	}
	return nil
}

func (r *Repository) FindPersonByEmail(ctx context.Context, email string) (*model.Person, error) {
	var person model.Person
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&person)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &person, nil
}

// FindTaskByName matches the task name case-insensitively. When names
// collide the task with the lowest id wins.
func (r *Repository) FindTaskByName(ctx context.Context, name string) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).
		Where("LOWER(task_name) = LOWER(?)", name).
		Order("task_id").
		First(&task)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &task, nil
}

func (r *Repository) GetPerson(ctx context.Context, id uint) (*model.Person, error) {
	var person model.Person
	result := r.db.WithContext(ctx).First(&person, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &person, nil
}

func (r *Repository) ListPeople(ctx context.Context) ([]model.Person, error) {
	var people []model.Person
	if err := r.db.WithContext(ctx).Order("name").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	return people, nil
}

func (r *Repository) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("task_name").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	return tasks, nil
}

func (r *Repository) CreatePerson(ctx context.Context, person *model.Person) error {
	if err := r.db.WithContext(ctx).Create(person).Error; err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *Repository) GetCompletion(ctx context.Context, personID, taskID uint) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	result := r.db.WithContext(ctx).
		Where("person_id = ? AND task_id = ?", personID, taskID).
		First(&completion)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &completion, nil
}

// UpsertCompletion inserts the completion for its (person, task) pair or
// overwrites the dates of the existing row. The conflict is resolved by the
// database on the unique (person_id, task_id) index, so two writers can never
// both insert.
func (r *Repository) UpsertCompletion(ctx context.Context, completion *model.TaskCompletion) error {
	completion.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "person_id"}, {Name: "task_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completion_date", "next_due_date", "updated_at"}),
		}).Create(completion).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert task completion: %w", err)
	}
	return nil
}

func (r *Repository) CountCompletions(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.TaskCompletion{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return total, nil
}

// ListCompletions returns one page of completions ordered by person and task.
func (r *Repository) ListCompletions(ctx context.Context, offset, limit int) ([]model.TaskCompletion, error) {
	var completions []model.TaskCompletion
	q := r.db.WithContext(ctx).Order("person_id").Order("task_id")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}
	return completions, nil
}

// DueCompletions returns every completion due on or before asOf, ordered by person.
func (r *Repository) DueCompletions(ctx context.Context, asOf time.Time) ([]model.DueTask, error) {
	var due []model.DueTask
	err := r.db.WithContext(ctx).
		Table("task_completion AS tc").
		Select("p.person_id, p.name, p.email, t.task_id, t.task_name, tc.next_due_date").
		Joins("JOIN people p ON tc.person_id = p.person_id").
		Joins("JOIN tasks t ON tc.task_id = t.task_id").
		Where("tc.next_due_date <= ?", model.DateOf(asOf)).
		Order("p.person_id").
		Order("t.task_name").
		Scan(&due).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get due tasks: %w", err)
	}
	return due, nil
}

func (r *Repository) IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.ProcessedEmail{}).Where("message_id = ?", messageID).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("database error checking processed email: %w", result.Error)
	}
	return count > 0, nil
}

func (r *Repository) MarkMessageProcessed(ctx context.Context, messageID string) error {
	processed := model.ProcessedEmail{
		MessageID:   messageID,
		ProcessedAt: time.Now(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&processed)
	if result.Error != nil {
		return fmt.Errorf("failed to mark email as processed: %w", result.Error)
	}
	return nil
}

func (r *Repository) LogNotice(ctx context.Context, entry *model.IngestLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log ingest notice: %w", err)
	}
	return nil
}

func (r *Repository) CountLogs(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.IngestLog{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return total, nil
}

// ListLogs returns one page of the ingest journal, newest first.
func (r *Repository) ListLogs(ctx context.Context, offset, limit int) ([]model.IngestLog, error) {
	var logs []model.IngestLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	return logs, nil
}

func (r *Repository) GetLog(ctx context.Context, id uint) (*model.IngestLog, error) {
	var entry model.IngestLog
	result := r.db.WithContext(ctx).First(&entry, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &entry, nil
}
