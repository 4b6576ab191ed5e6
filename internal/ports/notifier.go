package ports

import "github.com/xvierd/pomoflow/internal/domain"

// Notifier announces lifecycle milestones to the user.
// This is a driven port (implemented by adapters).
type Notifier interface {
	NotifyPomodoroComplete(task *domain.Task, p *domain.Pomodoro) error
	NotifyTaskComplete(task *domain.Task) error
}
