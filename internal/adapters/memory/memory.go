// Package memory provides an in-memory implementation of the storage ports.
// It is used by tests and by callers that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

// state is the full contents of the store. It is copied wholesale when a
// transaction begins so a failed transaction can be discarded.
type state struct {
	tasks     map[int64]*domain.Task
	pomodoros map[int64]*domain.Pomodoro
	nextTask  int64
	nextPomo  int64
}

func newState() *state {
	return &state{
		tasks:     make(map[int64]*domain.Task),
		pomodoros: make(map[int64]*domain.Pomodoro),
		nextTask:  1,
		nextPomo:  1,
	}
}

func (s *state) clone() *state {
	c := &state{
		tasks:     make(map[int64]*domain.Task, len(s.tasks)),
		pomodoros: make(map[int64]*domain.Pomodoro, len(s.pomodoros)),
		nextTask:  s.nextTask,
		nextPomo:  s.nextPomo,
	}
	for id, t := range s.tasks {
		c.tasks[id] = t.Clone()
	}
	for id, p := range s.pomodoros {
		c.pomodoros[id] = p.Clone()
	}
	return c
}

// Storage implements ports.Storage in memory.
type Storage struct {
	mu     *sync.Mutex
	data   *state
	inTx   bool
	closed bool
}

// Ensure Storage implements ports.Storage.
var _ ports.Storage = (*Storage)(nil)

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{mu: &sync.Mutex{}, data: newState()}
}

// Tasks returns the task repository.
func (s *Storage) Tasks() ports.TaskRepository {
	return &taskRepository{store: s}
}

// Pomodoros returns the pomodoro repository.
func (s *Storage) Pomodoros() ports.PomodoroRepository {
	return &pomodoroRepository{store: s}
}

// WithinTx runs fn against a private copy of the store and publishes the
// copy only when fn succeeds and ctx is still live. The store lock is held
// for the whole transaction, so other callers never see partial writes.
func (s *Storage) WithinTx(ctx context.Context, fn func(tx ports.Storage) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	tx := &Storage{mu: s.mu, data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w: %w", domain.ErrStorageUnavailable, err)
	}

	s.data = tx.data
	return nil
}

// Close marks the store closed; later calls fail with ErrStorageUnavailable.
func (s *Storage) Close() error {
	if s.inTx {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Migrate is a no-op for the in-memory store.
func (s *Storage) Migrate() error {
	return nil
}

// access runs fn with the store's data. Inside a transaction the caller
// already holds the lock.
func (s *Storage) access(ctx context.Context, fn func(d *state) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if s.inTx {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed()
	}
	return fn(s.data)
}

func errClosed() error {
	return fmt.Errorf("storage closed: %w", domain.ErrStorageUnavailable)
}
