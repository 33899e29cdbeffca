package service

import (
	"context"
	"errors"
	"fmt"

	"taskminder/internal/model"
	"taskminder/internal/repository"
)

var (
	// ErrUnknownSender means no person is registered with the sender address.
	ErrUnknownSender = errors.New("unknown sender")
	// ErrUnknownTask means no task carries the reported name.
	ErrUnknownTask = errors.New("unknown task name")
)

// Registry is the read-only view of people and tasks the engine needs.
type Registry interface {
	FindPersonByEmail(ctx context.Context, email string) (*model.Person, error)
	FindTaskByName(ctx context.Context, name string) (*model.Task, error)
}

// CompletionResolver maps a sender address and a free-text task name onto
// registry records. Both must resolve for a line to be applied.
type CompletionResolver struct {
	registry Registry
}

func NewCompletionResolver(registry Registry) *CompletionResolver {
	return &CompletionResolver{registry: registry}
}

func (r *CompletionResolver) Resolve(ctx context.Context, sender, taskName string) (*model.Person, *model.Task, error) {
	person, err := r.registry.FindPersonByEmail(ctx, sender)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSender, sender)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to look up sender: %w", ErrDatastore, err)
	}

	task, err := r.registry.FindTaskByName(ctx, taskName)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTask, taskName)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to look up task: %w", ErrDatastore, err)
	}

	return person, task, nil
}
