package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomoflow/internal/adapters/memory"
	"github.com/xvierd/pomoflow/internal/adapters/storage"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

var fixedNow = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

type storageFactory struct {
	name string
	open func(t *testing.T) ports.Storage
}

func storageFactories() []storageFactory {
	return []storageFactory{
		{"sqlite", func(t *testing.T) ports.Storage {
			s, err := storage.NewMemory()
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
		{"memory", func(t *testing.T) ports.Storage {
			return memory.New()
		}},
	}
}

// forEachStorage runs fn once per storage implementation.
func forEachStorage(t *testing.T, fn func(t *testing.T, store ports.Storage)) {
	for _, f := range storageFactories() {
		t.Run(f.name, func(t *testing.T) {
			fn(t, f.open(t))
		})
	}
}

func newEngine(store ports.Storage) *TaskService {
	svc := NewTaskService(store)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

func addEstimated(t *testing.T, svc *TaskService, title string, units int) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title)
	require.NoError(t, err)
	_, err = svc.AddTaskWithEstimation(context.Background(), task, units)
	require.NoError(t, err)
	return task
}

func aggregate(t *testing.T, svc *TaskService, task *domain.Task) *domain.TaskWithPomodoros {
	t.Helper()
	agg, err := svc.GetTaskWithPomodoros(context.Background(), task.ID.Int64())
	require.NoError(t, err)
	require.NotNil(t, agg)
	return agg
}

func statuses(list []*domain.Pomodoro) []domain.PomodoroStatus {
	out := make([]domain.PomodoroStatus, len(list))
	for i, p := range list {
		out[i] = p.Status
	}
	return out
}

func types(list []*domain.Pomodoro) []domain.PomodoroType {
	out := make([]domain.PomodoroType, len(list))
	for i, p := range list {
		out[i] = p.Type
	}
	return out
}

type recordingNotifier struct {
	tasks     []string
	pomodoros []domain.PomodoroType
}

func (n *recordingNotifier) NotifyTaskComplete(task *domain.Task) error {
	n.tasks = append(n.tasks, task.Title)
	return nil
}

func (n *recordingNotifier) NotifyPomodoroComplete(_ *domain.Task, p *domain.Pomodoro) error {
	n.pomodoros = append(n.pomodoros, p.Type)
	return nil
}
