package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

func setupTestStorage(t *testing.T) ports.Storage {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertTask(t *testing.T, s ports.Storage, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title)
	require.NoError(t, err)
	_, err = s.Tasks().Insert(context.Background(), task)
	require.NoError(t, err)
	return task
}

func insertPomodoro(t *testing.T, s ports.Storage, task *domain.Task, typ domain.PomodoroType) *domain.Pomodoro {
	t.Helper()
	p := &domain.Pomodoro{TaskID: task.ID, Type: typ, Status: domain.PomodoroNotStarted}
	_, err := s.Pomodoros().Insert(context.Background(), p)
	require.NoError(t, err)
	return p
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pomoflow.db")

	s, err := New(path)
	require.NoError(t, err)
	task := insertTask(t, s, "persisted")
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	id, _ := task.ID.Value()
	found, err := s.Tasks().FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "persisted", found.Title)
}

func TestTaskRepository_InsertAssignsID(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	task, _ := domain.NewTask("First")
	task.ID = domain.PersistedID(99)

	id, err := s.Tasks().Insert(ctx, task)
	require.NoError(t, err)

	v, ok := id.Value()
	require.True(t, ok)
	assert.Equal(t, int64(1), v, "supplied id must be ignored")
	assert.Equal(t, id, task.ID)

	second := insertTask(t, s, "Second")
	v2, _ := second.ID.Value()
	assert.Equal(t, int64(2), v2)
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	task := &domain.Task{
		Title:       "Write report",
		Description: "quarterly",
		Status:      domain.TaskPaused,
		Source:      domain.SourceJira,
		StartDate:   start,
		EndDate:     start.Add(time.Hour),
		Priority:    2,
	}
	_, err := s.Tasks().Insert(ctx, task)
	require.NoError(t, err)

	id, _ := task.ID.Value()
	found, err := s.Tasks().FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, task.Title, found.Title)
	assert.Equal(t, task.Description, found.Description)
	assert.Equal(t, domain.TaskPaused, found.Status)
	assert.Equal(t, domain.SourceJira, found.Source)
	assert.True(t, start.Equal(found.StartDate))
	assert.True(t, start.Add(time.Hour).Equal(found.EndDate))
	assert.Equal(t, 2, found.Priority)
}

func TestTaskRepository_FindByIDMissing(t *testing.T) {
	s := setupTestStorage(t)

	found, err := s.Tasks().FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTaskRepository_UpdateMissing(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		task *domain.Task
	}{
		{"unsaved", &domain.Task{Title: "ghost"}},
		{"absent id", &domain.Task{ID: domain.PersistedID(7), Title: "ghost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Tasks().Update(ctx, tt.task)
			assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		})
	}

	all, err := s.Tasks().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "update must never insert")
}

func TestTaskRepository_DeleteAbsentIsNoop(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	insertTask(t, s, "keep")

	require.NoError(t, s.Tasks().Delete(ctx, 1234))

	all, err := s.Tasks().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTaskRepository_FindActive(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	active, err := s.Tasks().FindActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	insertTask(t, s, "idle")
	started := insertTask(t, s, "running")
	started.Status = domain.TaskStarted
	require.NoError(t, s.Tasks().Update(ctx, started))

	active, err = s.Tasks().FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, started.ID, active.ID)
}

func TestTaskRepository_FindByTitle(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	insertTask(t, s, "Refactor storage layer")
	insertTask(t, s, "Write release notes")
	insertTask(t, s, "Review storage PR")

	found, err := s.Tasks().FindByTitle(ctx, "storage")
	require.NoError(t, err)
	require.Len(t, found, 2)
	for _, task := range found {
		assert.Contains(t, task.Title, "storage")
	}

	none, err := s.Tasks().FindByTitle(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPomodoroRepository_OrderAndRoundTrip(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	task := insertTask(t, s, "Task")

	work := insertPomodoro(t, s, task, domain.PomodoroWork)
	brk := insertPomodoro(t, s, task, domain.PomodoroBreak)

	now := time.Unix(1700000000, 0)
	work.Start(now)
	work.Pause(90 * time.Second)
	require.NoError(t, s.Pomodoros().Update(ctx, work))

	taskID, _ := task.ID.Value()
	list, err := s.Pomodoros().FindByTask(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, work.ID, list[0].ID)
	assert.Equal(t, brk.ID, list[1].ID)
	assert.Equal(t, domain.PomodoroPaused, list[0].Status)
	require.NotNil(t, list[0].StartTime)
	assert.True(t, now.Equal(*list[0].StartTime))
	require.NotNil(t, list[0].RemainingSeconds)
	assert.Equal(t, int64(90), *list[0].RemainingSeconds)
	assert.Nil(t, list[1].StartTime)
	assert.Nil(t, list[1].RemainingSeconds)
	assert.Equal(t, task.ID, list[1].TaskID)
}

func TestPomodoroRepository_Errors(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	t.Run("insert without task", func(t *testing.T) {
		_, err := s.Pomodoros().Insert(ctx, &domain.Pomodoro{Type: domain.PomodoroWork})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("insert for absent task", func(t *testing.T) {
		p := &domain.Pomodoro{TaskID: domain.PersistedID(500), Type: domain.PomodoroWork}
		_, err := s.Pomodoros().Insert(ctx, p)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("update absent", func(t *testing.T) {
		p := &domain.Pomodoro{ID: domain.PersistedID(500), TaskID: domain.PersistedID(1)}
		err := s.Pomodoros().Update(ctx, p)
		assert.ErrorIs(t, err, domain.ErrPomodoroNotFound)
	})

	t.Run("find absent", func(t *testing.T) {
		p, err := s.Pomodoros().FindByID(ctx, 500)
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestDeleteTaskCascades(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	task := insertTask(t, s, "Doomed")
	other := insertTask(t, s, "Survivor")
	p := insertPomodoro(t, s, task, domain.PomodoroWork)
	insertPomodoro(t, s, task, domain.PomodoroBreak)
	insertPomodoro(t, s, other, domain.PomodoroWork)

	id, _ := task.ID.Value()
	require.NoError(t, s.Tasks().Delete(ctx, id))

	list, err := s.Pomodoros().FindByTask(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, list)

	pid, _ := p.ID.Value()
	gone, err := s.Pomodoros().FindByID(ctx, pid)
	require.NoError(t, err)
	assert.Nil(t, gone)

	otherID, _ := other.ID.Value()
	kept, err := s.Pomodoros().FindByTask(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestWithinTx_Commit(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx ports.Storage) error {
		task, _ := domain.NewTask("in tx")
		if _, err := tx.Tasks().Insert(ctx, task); err != nil {
			return err
		}
		_, err := tx.Pomodoros().Insert(ctx, &domain.Pomodoro{TaskID: task.ID, Type: domain.PomodoroWork})
		return err
	})
	require.NoError(t, err)

	all, err := s.Tasks().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	id, _ := all[0].ID.Value()
	list, err := s.Pomodoros().FindByTask(ctx, id)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx ports.Storage) error {
		task, _ := domain.NewTask("discarded")
		if _, err := tx.Tasks().Insert(ctx, task); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.Tasks().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWithinTx_RollbackOnCancel(t *testing.T) {
	s := setupTestStorage(t)
	existing := insertTask(t, s, "existing")

	ctx, cancel := context.WithCancel(context.Background())
	err := s.WithinTx(ctx, func(tx ports.Storage) error {
		existing.Status = domain.TaskStarted
		if err := tx.Tasks().Update(ctx, existing); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	id, _ := existing.ID.Value()
	found, err := s.Tasks().FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskNotStarted, found.Status)
}

func TestWithinTx_Nested(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx ports.Storage) error {
		return tx.WithinTx(ctx, func(inner ports.Storage) error {
			task, _ := domain.NewTask("nested")
			_, err := inner.Tasks().Insert(ctx, task)
			return err
		})
	})
	require.NoError(t, err)

	all, err := s.Tasks().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStorageUnavailableAfterClose(t *testing.T) {
	s, err := NewMemory()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Tasks().FindAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
