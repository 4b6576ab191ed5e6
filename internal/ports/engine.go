package ports

import (
	"context"
	"time"

	"github.com/xvierd/pomoflow/internal/domain"
)

// TaskEngine is the task/pomodoro lifecycle API offered to transports.
// This is a driving port (implemented by the services layer).
type TaskEngine interface {
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	AddTask(ctx context.Context, task *domain.Task) (domain.ID, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, id int64) error

	GetTasksWithPomodoros(ctx context.Context) ([]*domain.TaskWithPomodoros, error)
	GetTaskWithPomodoros(ctx context.Context, id int64) (*domain.TaskWithPomodoros, error)
	GetActiveTaskWithPomodoros(ctx context.Context) (*domain.TaskWithPomodoros, error)
	SearchTasks(ctx context.Context, query string) ([]*domain.Task, error)

	AddTaskWithEstimation(ctx context.Context, task *domain.Task, units int) (domain.ID, error)
	IncreaseEstimation(ctx context.Context, task *domain.Task) error
	DecreaseEstimation(ctx context.Context, task *domain.Task) error

	CompleteTask(ctx context.Context, task *domain.Task) error
	SetActiveTask(ctx context.Context, task *domain.Task) error

	GetPomodoro(ctx context.Context, id int64) (*domain.Pomodoro, error)
	UpdatePomodoro(ctx context.Context, p *domain.Pomodoro) error
	CompletePomodoro(ctx context.Context, p *domain.Pomodoro) error
	CancelPomodoro(ctx context.Context, p *domain.Pomodoro) error
}

// SkipResult reports the outcome of skipping the current pomodoro.
type SkipResult struct {
	View *domain.SessionView
	// LastSegment is true when the skipped pomodoro ended the task's
	// sequence, signalling the caller to move on to another task.
	LastSegment bool
}

// SessionController drives the active task's current pomodoro for a
// timer-facing consumer. Each transition selects the current pomodoro,
// applies one update and returns the refreshed view.
// This is a driving port (implemented by the services layer).
type SessionController interface {
	Current(ctx context.Context) (*domain.SessionView, error)
	Start(ctx context.Context) (*domain.SessionView, error)
	Pause(ctx context.Context, remaining time.Duration) (*domain.SessionView, error)
	Skip(ctx context.Context) (*SkipResult, error)
	Complete(ctx context.Context) (*domain.SessionView, error)
}
