package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

// SessionService drives the active task's current pomodoro. It keeps no
// timer state: every call re-reads the active task from storage.
type SessionService struct {
	storage  ports.Storage
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Ensure SessionService implements ports.SessionController.
var _ ports.SessionController = (*SessionService)(nil)

// NewSessionService creates a new session service.
func NewSessionService(storage ports.Storage) *SessionService {
	return &SessionService{
		storage: storage,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// SetLogger replaces the service logger.
func (s *SessionService) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetNotifier sets the notifier used when a pomodoro completes.
func (s *SessionService) SetNotifier(notifier ports.Notifier) {
	s.notifier = notifier
}

// SetClock overrides the time source.
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Current returns the active task and the pomodoro it should run next.
// Current is nil when every segment is closed.
func (s *SessionService) Current(ctx context.Context) (*domain.SessionView, error) {
	var view *domain.SessionView
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		var err error
		view, err = loadView(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Start runs the current pomodoro.
func (s *SessionService) Start(ctx context.Context) (*domain.SessionView, error) {
	now := s.now()
	view, _, err := s.transition(ctx, "start", func(p *domain.Pomodoro) {
		p.Start(now)
	})
	return view, err
}

// Pause pauses the current pomodoro with the given time left on it.
func (s *SessionService) Pause(ctx context.Context, remaining time.Duration) (*domain.SessionView, error) {
	view, _, err := s.transition(ctx, "pause", func(p *domain.Pomodoro) {
		p.Pause(remaining)
	})
	return view, err
}

// Skip marks the current pomodoro NOT_NEEDED. LastSegment is set when it
// was the final pomodoro of the task.
func (s *SessionService) Skip(ctx context.Context) (*ports.SkipResult, error) {
	view, last, err := s.transition(ctx, "skip", func(p *domain.Pomodoro) {
		p.Cancel()
	})
	if err != nil {
		return nil, err
	}
	return &ports.SkipResult{View: view, LastSegment: last}, nil
}

// Complete finishes the current pomodoro.
func (s *SessionService) Complete(ctx context.Context) (*domain.SessionView, error) {
	now := s.now()
	var finished *domain.Pomodoro
	view, _, err := s.transition(ctx, "complete", func(p *domain.Pomodoro) {
		p.Finish(now)
		finished = p
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyPomodoroComplete(view.Task.Task, finished); err != nil {
			s.logger.Warn("notification failed", "error", err)
		}
	}
	return view, nil
}

// transition selects the current pomodoro, applies one update to it and
// returns the refreshed view. It also reports whether the updated pomodoro
// was the last of the sequence.
func (s *SessionService) transition(ctx context.Context, name string, apply func(p *domain.Pomodoro)) (*domain.SessionView, bool, error) {
	var (
		view *domain.SessionView
		last bool
	)
	err := s.storage.WithinTx(ctx, func(tx ports.Storage) error {
		before, err := loadView(ctx, tx)
		if err != nil {
			return err
		}
		current := before.Current
		if current == nil {
			return domain.ErrNoCurrentPomodoro
		}

		apply(current)
		if err := tx.Pomodoros().Update(ctx, current); err != nil {
			return err
		}
		last = domain.IsLast(before.Task.Pomodoros, current)

		s.logger.Debug("pomodoro "+name,
			"task_id", before.Task.Task.ID.String(),
			"pomodoro_id", current.ID.String(),
			"status", string(current.Status),
		)

		view, err = loadView(ctx, tx)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to %s pomodoro: %w", name, err)
	}
	return view, last, nil
}

func loadView(ctx context.Context, tx ports.Storage) (*domain.SessionView, error) {
	agg, err := activeAggregate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, domain.ErrNoActiveTask
	}
	return &domain.SessionView{
		Task:    agg,
		Current: domain.CurrentPomodoro(agg.Pomodoros),
	}, nil
}
