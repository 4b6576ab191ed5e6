package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

const taskColumns = `id, title, description, status, source, start_date, end_date, priority`

// taskRepository implements ports.TaskRepository using SQLite.
type taskRepository struct {
	db dbtx
}

// newTaskRepository creates a new task repository.
func newTaskRepository(db dbtx) ports.TaskRepository {
	return &taskRepository{db: db}
}

// Insert persists a new task and assigns its ID.
func (r *taskRepository) Insert(ctx context.Context, task *domain.Task) (domain.ID, error) {
	query := `
		INSERT INTO tasks (title, description, status, source, start_date, end_date, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(statusOrDefault(task.Status)),
		string(sourceOrDefault(task.Source)),
		toEpoch(task.StartDate),
		toEpoch(task.EndDate),
		task.Priority,
	)
	if err != nil {
		return domain.ID{}, storageError("failed to save task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.ID{}, storageError("failed to read task id", err)
	}

	task.ID = domain.PersistedID(id)
	return task.ID, nil
}

// Update modifies an existing task.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	id, ok := task.ID.Value()
	if !ok {
		return fmt.Errorf("cannot update unsaved task: %w", domain.ErrTaskNotFound)
	}

	query := `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, source = ?, start_date = ?, end_date = ?, priority = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(statusOrDefault(task.Status)),
		string(sourceOrDefault(task.Source)),
		toEpoch(task.StartDate),
		toEpoch(task.EndDate),
		task.Priority,
		id,
	)
	if err != nil {
		return storageError("failed to update task", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageError("failed to update task", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound)
	}

	return nil
}

// Delete removes a task; its pomodoros go with it through the cascade.
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return storageError("failed to delete task", err)
	}
	return nil
}

// FindAll retrieves all tasks in insertion order.
func (r *taskRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageError("failed to query tasks", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanTasks(rows)
}

// FindByID retrieves a task by its identifier.
func (r *taskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("failed to find task", err)
	}
	return task, nil
}

// FindActive returns the task with status STARTED.
func (r *taskRepository) FindActive(ctx context.Context) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = ? ORDER BY id LIMIT 1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, string(domain.TaskStarted)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("failed to find active task", err)
	}
	return task, nil
}

// FindByTitle does a fuzzy search for tasks by title.
func (r *taskRepository) FindByTitle(ctx context.Context, query string) ([]*domain.Task, error) {
	tasks, err := r.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for fuzzy search: %w", err)
	}
	return matchTitles(query, tasks), nil
}

// matchTitles ranks tasks by fuzzy title match, dropping non-matches.
func matchTitles(query string, tasks []*domain.Task) []*domain.Task {
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}

	var result []*domain.Task
	for _, match := range fuzzy.Find(query, titles) {
		result = append(result, tasks[match.Index])
	}
	return result
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		id        int64
		status    string
		source    string
		startDate int64
		endDate   int64
	)

	err := row.Scan(
		&id,
		&task.Title,
		&task.Description,
		&status,
		&source,
		&startDate,
		&endDate,
		&task.Priority,
	)
	if err != nil {
		return nil, err
	}

	task.ID = domain.PersistedID(id)
	task.Status = domain.TaskStatus(status)
	task.Source = domain.TaskSource(source)
	task.StartDate = fromEpoch(startDate)
	task.EndDate = fromEpoch(endDate)
	return &task, nil
}

// scanTasks scans multiple task rows.
func (r *taskRepository) scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storageError("failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read tasks", err)
	}
	return tasks, nil
}

func statusOrDefault(s domain.TaskStatus) domain.TaskStatus {
	if s == "" {
		return domain.TaskNotStarted
	}
	return s
}

func sourceOrDefault(s domain.TaskSource) domain.TaskSource {
	if s == "" {
		return domain.SourceLocal
	}
	return s
}

func toEpoch(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromEpoch(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
