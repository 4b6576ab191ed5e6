// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/pomoflow/internal/config"
	"github.com/xvierd/pomoflow/internal/domain"
	"github.com/xvierd/pomoflow/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg  *config.NotificationConfig
	send func(title, message string) error
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg: cfg,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.send(title, message)
}

// NotifyPomodoroComplete announces a finished WORK or BREAK segment.
func (n *Notifier) NotifyPomodoroComplete(task *domain.Task, p *domain.Pomodoro) error {
	if p.Type == domain.PomodoroBreak {
		return n.Notify("☕ Break Over!", fmt.Sprintf("Back to %q. Ready to focus?", task.Title))
	}
	return n.Notify("🍅 Pomodoro Complete!", fmt.Sprintf("Great job on %q. Time for a break.", task.Title))
}

// NotifyTaskComplete announces a finished task.
func (n *Notifier) NotifyTaskComplete(task *domain.Task) error {
	return n.Notify("✅ Task Complete!", fmt.Sprintf("%q is done.", task.Title))
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
