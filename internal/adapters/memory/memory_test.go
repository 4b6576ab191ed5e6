package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

func TestStorage_InsertAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()

	task, _ := domain.NewTask("Task")
	id, err := s.Tasks().Insert(ctx, task)
	require.NoError(t, err)
	v, ok := id.Value()
	require.True(t, ok)

	found, err := s.Tasks().FindByID(ctx, v)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Task", found.Title)

	found.Title = "mutated"
	again, _ := s.Tasks().FindByID(ctx, v)
	assert.Equal(t, "Task", again.Title, "returned tasks must be copies")
}

func TestStorage_CascadeAndOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	task, _ := domain.NewTask("Task")
	_, err := s.Tasks().Insert(ctx, task)
	require.NoError(t, err)

	for _, typ := range []domain.PomodoroType{domain.PomodoroWork, domain.PomodoroBreak, domain.PomodoroWork} {
		_, err := s.Pomodoros().Insert(ctx, &domain.Pomodoro{TaskID: task.ID, Type: typ})
		require.NoError(t, err)
	}

	taskID, _ := task.ID.Value()
	list, err := s.Pomodoros().FindByTask(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domain.PomodoroWork, list[0].Type)
	assert.Equal(t, domain.PomodoroBreak, list[1].Type)
	assert.Equal(t, domain.PomodoroNotStarted, list[2].Status)

	require.NoError(t, s.Tasks().Delete(ctx, taskID))
	list, err = s.Pomodoros().FindByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStorage_NotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Tasks().Update(ctx, &domain.Task{ID: domain.PersistedID(1)})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = s.Pomodoros().Update(ctx, &domain.Pomodoro{ID: domain.PersistedID(1)})
	assert.ErrorIs(t, err, domain.ErrPomodoroNotFound)

	_, err = s.Pomodoros().Insert(ctx, &domain.Pomodoro{TaskID: domain.PersistedID(3)})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.NoError(t, s.Tasks().Delete(ctx, 9))
}

func TestStorage_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		s := New()
		err := s.WithinTx(ctx, func(tx ports.Storage) error {
			task, _ := domain.NewTask("kept")
			_, err := tx.Tasks().Insert(ctx, task)
			return err
		})
		require.NoError(t, err)

		all, _ := s.Tasks().FindAll(ctx)
		assert.Len(t, all, 1)
	})

	t.Run("rollback on error", func(t *testing.T) {
		s := New()
		boom := errors.New("boom")
		err := s.WithinTx(ctx, func(tx ports.Storage) error {
			task, _ := domain.NewTask("dropped")
			if _, err := tx.Tasks().Insert(ctx, task); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		all, _ := s.Tasks().FindAll(ctx)
		assert.Empty(t, all)
	})

	t.Run("rollback on cancel", func(t *testing.T) {
		s := New()
		cctx, cancel := context.WithCancel(ctx)
		err := s.WithinTx(cctx, func(tx ports.Storage) error {
			task, _ := domain.NewTask("dropped")
			_, err := tx.Tasks().Insert(cctx, task)
			cancel()
			return err
		})
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		assert.ErrorIs(t, err, context.Canceled)

		all, _ := s.Tasks().FindAll(ctx)
		assert.Empty(t, all)
	})
}

func TestStorage_Closed(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	_, err := s.Tasks().FindAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
