// Package ports defines the interfaces (driven and driving ports)
// for pomoflow following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/pomoflow/internal/domain"
)

// TaskRepository defines the interface for task persistence.
// This is a driven port (implemented by adapters).
type TaskRepository interface {
	// Insert stores a new task, ignoring any ID it carries, and returns
	// the identity storage assigned. The task's ID is updated in place.
	Insert(ctx context.Context, task *domain.Task) (domain.ID, error)

	// Update overwrites an existing task. It fails with
	// domain.ErrTaskNotFound when the ID is not stored.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and its pomodoros. Deleting an absent ID is a no-op.
	Delete(ctx context.Context, id int64) error

	// FindAll returns every task in insertion order.
	FindAll(ctx context.Context) ([]*domain.Task, error)

	// FindByID returns the task, or nil when it does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Task, error)

	// FindActive returns the task with status STARTED, or nil.
	FindActive(ctx context.Context) (*domain.Task, error)

	// FindByTitle does a fuzzy search over task titles, best match first.
	FindByTitle(ctx context.Context, query string) ([]*domain.Task, error)
}

// PomodoroRepository defines the interface for pomodoro persistence.
// This is a driven port (implemented by adapters).
type PomodoroRepository interface {
	// Insert stores a new pomodoro and returns its assigned identity.
	Insert(ctx context.Context, p *domain.Pomodoro) (domain.ID, error)

	// Update overwrites an existing pomodoro. It fails with
	// domain.ErrPomodoroNotFound when the ID is not stored.
	Update(ctx context.Context, p *domain.Pomodoro) error

	// Delete removes a pomodoro. Deleting an absent ID is a no-op.
	Delete(ctx context.Context, id int64) error

	// FindByID returns the pomodoro, or nil when it does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Pomodoro, error)

	// FindByTask returns a task's pomodoros in insertion order.
	FindByTask(ctx context.Context, taskID int64) ([]*domain.Pomodoro, error)
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Tasks provides access to task operations.
	Tasks() TaskRepository

	// Pomodoros provides access to pomodoro operations.
	Pomodoros() PomodoroRepository

	// WithinTx runs fn against a transactional view of the storage. Writes
	// made through tx become visible to other readers only if fn returns
	// nil and ctx is still live; otherwise all of them are rolled back.
	// Calling WithinTx on a transactional view joins the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Storage) error) error

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
