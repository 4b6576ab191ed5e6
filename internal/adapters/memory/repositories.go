package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/pomoflow/internal/domain"
)

type taskRepository struct {
	store *Storage
}

func (r *taskRepository) Insert(ctx context.Context, task *domain.Task) (domain.ID, error) {
	var id domain.ID
	err := r.store.access(ctx, func(d *state) error {
		id = domain.PersistedID(d.nextTask)
		d.nextTask++

		stored := task.Clone()
		stored.ID = id
		if stored.Status == "" {
			stored.Status = domain.TaskNotStarted
		}
		if stored.Source == "" {
			stored.Source = domain.SourceLocal
		}
		v, _ := id.Value()
		d.tasks[v] = stored
		return nil
	})
	if err != nil {
		return domain.ID{}, err
	}
	task.ID = id
	return id, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	id, ok := task.ID.Value()
	if !ok {
		return fmt.Errorf("cannot update unsaved task: %w", domain.ErrTaskNotFound)
	}
	return r.store.access(ctx, func(d *state) error {
		if _, exists := d.tasks[id]; !exists {
			return fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound)
		}
		d.tasks[id] = task.Clone()
		return nil
	})
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	return r.store.access(ctx, func(d *state) error {
		delete(d.tasks, id)
		for pid, p := range d.pomodoros {
			if v, _ := p.TaskID.Value(); v == id {
				delete(d.pomodoros, pid)
			}
		}
		return nil
	})
}

func (r *taskRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.store.access(ctx, func(d *state) error {
		tasks = sortedTasks(d)
		return nil
	})
	return tasks, err
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task *domain.Task
	err := r.store.access(ctx, func(d *state) error {
		if t, ok := d.tasks[id]; ok {
			task = t.Clone()
		}
		return nil
	})
	return task, err
}

func (r *taskRepository) FindActive(ctx context.Context) (*domain.Task, error) {
	var task *domain.Task
	err := r.store.access(ctx, func(d *state) error {
		for _, t := range sortedTasks(d) {
			if t.Status == domain.TaskStarted {
				task = t
				return nil
			}
		}
		return nil
	})
	return task, err
}

func (r *taskRepository) FindByTitle(ctx context.Context, query string) ([]*domain.Task, error) {
	tasks, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}

	var result []*domain.Task
	for _, match := range fuzzy.Find(query, titles) {
		result = append(result, tasks[match.Index])
	}
	return result, nil
}

// sortedTasks returns clones of all tasks in insertion order.
func sortedTasks(d *state) []*domain.Task {
	ids := make([]int64, 0, len(d.tasks))
	for id := range d.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tasks := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, d.tasks[id].Clone())
	}
	return tasks
}

type pomodoroRepository struct {
	store *Storage
}

func (r *pomodoroRepository) Insert(ctx context.Context, p *domain.Pomodoro) (domain.ID, error) {
	taskID, ok := p.TaskID.Value()
	if !ok {
		return domain.ID{}, fmt.Errorf("pomodoro has no owning task: %w", domain.ErrTaskNotFound)
	}

	var id domain.ID
	err := r.store.access(ctx, func(d *state) error {
		if _, exists := d.tasks[taskID]; !exists {
			return fmt.Errorf("task %d: %w", taskID, domain.ErrTaskNotFound)
		}
		id = domain.PersistedID(d.nextPomo)
		d.nextPomo++

		stored := p.Clone()
		stored.ID = id
		if stored.Type == "" {
			stored.Type = domain.PomodoroWork
		}
		if stored.Status == "" {
			stored.Status = domain.PomodoroNotStarted
		}
		v, _ := id.Value()
		d.pomodoros[v] = stored
		return nil
	})
	if err != nil {
		return domain.ID{}, err
	}
	p.ID = id
	return id, nil
}

func (r *pomodoroRepository) Update(ctx context.Context, p *domain.Pomodoro) error {
	id, ok := p.ID.Value()
	if !ok {
		return fmt.Errorf("cannot update unsaved pomodoro: %w", domain.ErrPomodoroNotFound)
	}
	return r.store.access(ctx, func(d *state) error {
		existing, exists := d.pomodoros[id]
		if !exists {
			return fmt.Errorf("pomodoro %d: %w", id, domain.ErrPomodoroNotFound)
		}
		stored := p.Clone()
		stored.TaskID = existing.TaskID
		d.pomodoros[id] = stored
		return nil
	})
}

func (r *pomodoroRepository) Delete(ctx context.Context, id int64) error {
	return r.store.access(ctx, func(d *state) error {
		delete(d.pomodoros, id)
		return nil
	})
}

func (r *pomodoroRepository) FindByID(ctx context.Context, id int64) (*domain.Pomodoro, error) {
	var p *domain.Pomodoro
	err := r.store.access(ctx, func(d *state) error {
		if found, ok := d.pomodoros[id]; ok {
			p = found.Clone()
		}
		return nil
	})
	return p, err
}

func (r *pomodoroRepository) FindByTask(ctx context.Context, taskID int64) ([]*domain.Pomodoro, error) {
	var list []*domain.Pomodoro
	err := r.store.access(ctx, func(d *state) error {
		for _, p := range d.pomodoros {
			if v, _ := p.TaskID.Value(); v == taskID {
				list = append(list, p.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID.Int64() < list[j].ID.Int64()
	})
	return list, nil
}
