// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

// TaskService is the task/pomodoro lifecycle engine. Every operation that
// writes more than one row runs inside a single storage transaction.
type TaskService struct {
	storage  ports.Storage
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Ensure TaskService implements ports.TaskEngine.
var _ ports.TaskEngine = (*TaskService)(nil)

// NewTaskService creates a new task service.
func NewTaskService(storage ports.Storage) *TaskService {
	return &TaskService{
		storage: storage,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// SetLogger replaces the service logger.
func (s *TaskService) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetNotifier sets the notifier used when tasks and pomodoros complete.
func (s *TaskService) SetNotifier(notifier ports.Notifier) {
	s.notifier = notifier
}

// SetClock overrides the time source.
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}

// GetTask retrieves a task by ID. A missing task yields nil and no error.
func (s *TaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return s.storage.Tasks().FindByID(ctx, id)
}

// AddTask stores a new task. Any ID the task carries is ignored.
func (s *TaskService) AddTask(ctx context.Context, task *domain.Task) (domain.ID, error) {
	id, err := s.storage.Tasks().Insert(ctx, task)
	if err != nil {
		return domain.ID{}, fmt.Errorf("failed to add task: %w", err)
	}
	s.logger.Debug("task added", "task_id", id.String())
	return id, nil
}

// UpdateTask overwrites an existing task. It never inserts.
func (s *TaskService) UpdateTask(ctx context.Context, task *domain.Task) error {
	if err := s.storage.Tasks().Update(ctx, task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task and its pomodoros. Absent IDs are ignored.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.storage.Tasks().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Debug("task deleted", "task_id", id)
	return nil
}

// GetTasksWithPomodoros returns every task with its pomodoros, in insertion order.
func (s *TaskService) GetTasksWithPomodoros(ctx context.Context) ([]*domain.TaskWithPomodoros, error) {
	var result []*domain.TaskWithPomodoros
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		tasks, err := tx.Tasks().FindAll(ctx)
		if err != nil {
			return err
		}
		result = make([]*domain.TaskWithPomodoros, 0, len(tasks))
		for _, task := range tasks {
			agg, err := loadAggregate(ctx, tx, task)
			if err != nil {
				return err
			}
			result = append(result, agg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return result, nil
}

// GetTaskWithPomodoros returns one task with its pomodoros, or nil.
func (s *TaskService) GetTaskWithPomodoros(ctx context.Context, id int64) (*domain.TaskWithPomodoros, error) {
	var result *domain.TaskWithPomodoros
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		task, err := tx.Tasks().FindByID(ctx, id)
		if err != nil || task == nil {
			return err
		}
		result, err = loadAggregate(ctx, tx, task)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", id, err)
	}
	return result, nil
}

// GetActiveTaskWithPomodoros returns the STARTED task with its pomodoros, or nil.
func (s *TaskService) GetActiveTaskWithPomodoros(ctx context.Context) (*domain.TaskWithPomodoros, error) {
	var result *domain.TaskWithPomodoros
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		var err error
		result, err = activeAggregate(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load active task: %w", err)
	}
	return result, nil
}

// SearchTasks does a fuzzy search over task titles.
func (s *TaskService) SearchTasks(ctx context.Context, query string) ([]*domain.Task, error) {
	tasks, err := s.storage.Tasks().FindByTitle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}

// AddTaskWithEstimation stores a new task and appends units WORK+BREAK pairs.
// A task added as FINISHED gets finished segments and stays FINISHED.
func (s *TaskService) AddTaskWithEstimation(ctx context.Context, task *domain.Task, units int) (domain.ID, error) {
	if units < 0 {
		return domain.ID{}, fmt.Errorf("%w: %d", domain.ErrInvalidEstimation, units)
	}

	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		if _, err := tx.Tasks().Insert(ctx, task); err != nil {
			return err
		}
		for i := 0; i < units; i++ {
			if err := appendUnit(ctx, tx, task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		task.ID = domain.ID{}
		return domain.ID{}, fmt.Errorf("failed to add task with estimation: %w", err)
	}

	s.logger.Debug("task added", "task_id", task.ID.String(), "units", units)
	return task.ID, nil
}

// IncreaseEstimation appends one WORK+BREAK pair. A FINISHED task is first
// reopened as PAUSED, so the new pair is NOT_STARTED.
func (s *TaskService) IncreaseEstimation(ctx context.Context, task *domain.Task) error {
	var status domain.TaskStatus
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		stored, err := findTask(ctx, tx, task.ID)
		if err != nil {
			return err
		}

		if reopened := domain.ReopenForEstimation(stored.Status); reopened != stored.Status {
			stored.Status = reopened
			if err := tx.Tasks().Update(ctx, stored); err != nil {
				return err
			}
		}

		status = stored.Status
		return appendUnit(ctx, tx, stored)
	})
	if err != nil {
		return fmt.Errorf("failed to increase estimation: %w", err)
	}

	task.Status = status
	s.logger.Debug("estimation increased", "task_id", task.ID.String())
	return nil
}

// DecreaseEstimation removes the last WORK+BREAK pair. It fails with
// ErrNoAvailableUnit unless both trailing pomodoros are NOT_STARTED.
func (s *TaskService) DecreaseEstimation(ctx context.Context, task *domain.Task) error {
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		stored, err := findTask(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		id, _ := stored.ID.Value()

		pomodoros, err := tx.Pomodoros().FindByTask(ctx, id)
		if err != nil {
			return err
		}

		unit, err := domain.RemovableUnit(pomodoros)
		if err != nil {
			return err
		}
		for _, p := range unit {
			if err := tx.Pomodoros().Delete(ctx, p.ID.Int64()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to decrease estimation: %w", err)
	}

	s.logger.Debug("estimation decreased", "task_id", task.ID.String())
	return nil
}

// CompleteTask marks the task FINISHED and cancels every pomodoro of it
// that is not already FINISHED.
func (s *TaskService) CompleteTask(ctx context.Context, task *domain.Task) error {
	var completed *domain.Task
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		stored, err := findTask(ctx, tx, task.ID)
		if err != nil {
			return err
		}

		stored.Status = domain.TaskFinished
		if err := tx.Tasks().Update(ctx, stored); err != nil {
			return err
		}

		id, _ := stored.ID.Value()
		pomodoros, err := tx.Pomodoros().FindByTask(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range pomodoros {
			if p.IsClosed() {
				continue
			}
			p.Cancel()
			if err := tx.Pomodoros().Update(ctx, p); err != nil {
				return err
			}
		}

		completed = stored
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	task.Status = domain.TaskFinished
	s.logger.Debug("task completed", "task_id", task.ID.String())
	s.notifyTask(completed)
	return nil
}

// SetActiveTask makes task the single STARTED task. The previously active
// task, if any, is paused and its running pomodoro interrupted. This also
// applies when task is itself the active one: its running pomodoro is
// interrupted and it ends up STARTED again.
func (s *TaskService) SetActiveTask(ctx context.Context, task *domain.Task) error {
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		target, err := findTask(ctx, tx, task.ID)
		if err != nil {
			return err
		}

		active, err := tx.Tasks().FindActive(ctx)
		if err != nil {
			return err
		}
		if active != nil {
			if err := interruptRunning(ctx, tx, active); err != nil {
				return err
			}
			active.Status = domain.TaskPaused
			if err := tx.Tasks().Update(ctx, active); err != nil {
				return err
			}
			s.logger.Debug("task paused", "task_id", active.ID.String())
		}

		target.Status = domain.TaskStarted
		return tx.Tasks().Update(ctx, target)
	})
	if err != nil {
		return fmt.Errorf("failed to activate task: %w", err)
	}

	task.Status = domain.TaskStarted
	s.logger.Debug("task activated", "task_id", task.ID.String())
	return nil
}

// GetPomodoro retrieves a pomodoro by ID. A missing pomodoro yields nil.
func (s *TaskService) GetPomodoro(ctx context.Context, id int64) (*domain.Pomodoro, error) {
	return s.storage.Pomodoros().FindByID(ctx, id)
}

// UpdatePomodoro overwrites an existing pomodoro.
func (s *TaskService) UpdatePomodoro(ctx context.Context, p *domain.Pomodoro) error {
	if err := s.storage.Pomodoros().Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update pomodoro: %w", err)
	}
	return nil
}

// CompletePomodoro marks a pomodoro FINISHED. The owning task is untouched.
func (s *TaskService) CompletePomodoro(ctx context.Context, p *domain.Pomodoro) error {
	updated := p.Clone()
	updated.Finish(s.now())
	if err := s.storage.Pomodoros().Update(ctx, updated); err != nil {
		return fmt.Errorf("failed to complete pomodoro: %w", err)
	}
	*p = *updated

	if task, err := s.storage.Tasks().FindByID(ctx, p.TaskID.Int64()); err == nil && task != nil {
		s.notifyPomodoro(task, p)
	}
	return nil
}

// CancelPomodoro marks a pomodoro NOT_NEEDED.
func (s *TaskService) CancelPomodoro(ctx context.Context, p *domain.Pomodoro) error {
	updated := p.Clone()
	updated.Cancel()
	if err := s.storage.Pomodoros().Update(ctx, updated); err != nil {
		return fmt.Errorf("failed to cancel pomodoro: %w", err)
	}
	*p = *updated
	return nil
}

func (s *TaskService) notifyTask(task *domain.Task) {
	if s.notifier == nil || task == nil {
		return
	}
	if err := s.notifier.NotifyTaskComplete(task); err != nil {
		s.logger.Warn("notification failed", "error", err)
	}
}

func (s *TaskService) notifyPomodoro(task *domain.Task, p *domain.Pomodoro) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyPomodoroComplete(task, p); err != nil {
		s.logger.Warn("notification failed", "error", err)
	}
}

// findTask loads the stored copy of a task, failing with ErrTaskNotFound
// when it was never saved or no longer exists.
func findTask(ctx context.Context, tx ports.Storage, id domain.ID) (*domain.Task, error) {
	v, ok := id.Value()
	if !ok {
		return nil, fmt.Errorf("task is unsaved: %w", domain.ErrTaskNotFound)
	}
	task, err := tx.Tasks().FindByID(ctx, v)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", v, domain.ErrTaskNotFound)
	}
	return task, nil
}

// appendUnit inserts one WORK+BREAK pair at the end of the task's sequence.
func appendUnit(ctx context.Context, tx ports.Storage, task *domain.Task) error {
	for _, p := range domain.NewEstimationUnit(task) {
		if _, err := tx.Pomodoros().Insert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// interruptRunning marks the task's STARTED pomodoro INTERRUPTED.
func interruptRunning(ctx context.Context, tx ports.Storage, task *domain.Task) error {
	id, _ := task.ID.Value()
	pomodoros, err := tx.Pomodoros().FindByTask(ctx, id)
	if err != nil {
		return err
	}
	running := domain.StartedPomodoro(pomodoros)
	if running == nil {
		return nil
	}
	running.Status = domain.PomodoroInterrupted
	return tx.Pomodoros().Update(ctx, running)
}

func loadAggregate(ctx context.Context, tx ports.Storage, task *domain.Task) (*domain.TaskWithPomodoros, error) {
	id, _ := task.ID.Value()
	pomodoros, err := tx.Pomodoros().FindByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.TaskWithPomodoros{Task: task, Pomodoros: pomodoros}, nil
}

func activeAggregate(ctx context.Context, tx ports.Storage) (*domain.TaskWithPomodoros, error) {
	task, err := tx.Tasks().FindActive(ctx)
	if err != nil || task == nil {
		return nil, err
	}
	return loadAggregate(ctx, tx, task)
}
