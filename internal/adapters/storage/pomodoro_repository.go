package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

const pomodoroColumns = `id, task_id, type, status, start_time, end_time, remaining_seconds`

// pomodoroRepository implements ports.PomodoroRepository using SQLite.
type pomodoroRepository struct {
	db dbtx
}

// newPomodoroRepository creates a new pomodoro repository.
func newPomodoroRepository(db dbtx) ports.PomodoroRepository {
	return &pomodoroRepository{db: db}
}

// Insert persists a new pomodoro and assigns its ID.
func (r *pomodoroRepository) Insert(ctx context.Context, p *domain.Pomodoro) (domain.ID, error) {
	taskID, ok := p.TaskID.Value()
	if !ok {
		return domain.ID{}, fmt.Errorf("pomodoro has no owning task: %w", domain.ErrTaskNotFound)
	}

	query := `
		INSERT INTO pomodoros (task_id, type, status, start_time, end_time, remaining_seconds)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		taskID,
		string(typeOrDefault(p.Type)),
		string(pomodoroStatusOrDefault(p.Status)),
		epochPtr(p.StartTime),
		epochPtr(p.EndTime),
		nullInt(p.RemainingSeconds),
	)
	if isForeignKeyError(err) {
		return domain.ID{}, fmt.Errorf("task %d: %w", taskID, domain.ErrTaskNotFound)
	}
	if err != nil {
		return domain.ID{}, storageError("failed to save pomodoro", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.ID{}, storageError("failed to read pomodoro id", err)
	}

	p.ID = domain.PersistedID(id)
	return p.ID, nil
}

// Update modifies an existing pomodoro. The owning task is never changed.
func (r *pomodoroRepository) Update(ctx context.Context, p *domain.Pomodoro) error {
	id, ok := p.ID.Value()
	if !ok {
		return fmt.Errorf("cannot update unsaved pomodoro: %w", domain.ErrPomodoroNotFound)
	}

	query := `
		UPDATE pomodoros
		SET type = ?, status = ?, start_time = ?, end_time = ?, remaining_seconds = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(typeOrDefault(p.Type)),
		string(pomodoroStatusOrDefault(p.Status)),
		epochPtr(p.StartTime),
		epochPtr(p.EndTime),
		nullInt(p.RemainingSeconds),
		id,
	)
	if err != nil {
		return storageError("failed to update pomodoro", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageError("failed to update pomodoro", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pomodoro %d: %w", id, domain.ErrPomodoroNotFound)
	}

	return nil
}

// Delete removes a pomodoro.
func (r *pomodoroRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pomodoros WHERE id = ?`, id); err != nil {
		return storageError("failed to delete pomodoro", err)
	}
	return nil
}

// FindByID retrieves a pomodoro by its identifier.
func (r *pomodoroRepository) FindByID(ctx context.Context, id int64) (*domain.Pomodoro, error) {
	query := `SELECT ` + pomodoroColumns + ` FROM pomodoros WHERE id = ?`

	p, err := scanPomodoro(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("failed to find pomodoro", err)
	}
	return p, nil
}

// FindByTask retrieves a task's pomodoros in insertion order.
func (r *pomodoroRepository) FindByTask(ctx context.Context, taskID int64) ([]*domain.Pomodoro, error) {
	query := `SELECT ` + pomodoroColumns + ` FROM pomodoros WHERE task_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, storageError("failed to query pomodoros by task", err)
	}
	defer func() { _ = rows.Close() }()

	var pomodoros []*domain.Pomodoro
	for rows.Next() {
		p, err := scanPomodoro(rows)
		if err != nil {
			return nil, storageError("failed to scan pomodoro", err)
		}
		pomodoros = append(pomodoros, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read pomodoros", err)
	}
	return pomodoros, nil
}

func scanPomodoro(row rowScanner) (*domain.Pomodoro, error) {
	var (
		p         domain.Pomodoro
		id        int64
		taskID    int64
		typ       string
		status    string
		startTime sql.NullInt64
		endTime   sql.NullInt64
		remaining sql.NullInt64
	)

	if err := row.Scan(&id, &taskID, &typ, &status, &startTime, &endTime, &remaining); err != nil {
		return nil, err
	}

	p.ID = domain.PersistedID(id)
	p.TaskID = domain.PersistedID(taskID)
	p.Type = domain.PomodoroType(typ)
	p.Status = domain.PomodoroStatus(status)
	p.StartTime = timeFromNull(startTime)
	p.EndTime = timeFromNull(endTime)
	p.RemainingSeconds = nullableEpoch(remaining)
	return &p, nil
}

func typeOrDefault(t domain.PomodoroType) domain.PomodoroType {
	if t == "" {
		return domain.PomodoroWork
	}
	return t
}

func pomodoroStatusOrDefault(s domain.PomodoroStatus) domain.PomodoroStatus {
	if s == "" {
		return domain.PomodoroNotStarted
	}
	return s
}

func epochPtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
