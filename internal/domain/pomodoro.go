package domain

import (
	"fmt"
	"strings"
	"time"
)

// PomodoroType distinguishes work segments from breaks.
type PomodoroType string

const (
	PomodoroWork  PomodoroType = "WORK"
	PomodoroBreak PomodoroType = "BREAK"
)

// PomodoroStatus represents the state of a single segment.
type PomodoroStatus string

const (
	PomodoroNotStarted  PomodoroStatus = "NOT_STARTED"
	PomodoroStarted     PomodoroStatus = "STARTED"
	PomodoroPaused      PomodoroStatus = "PAUSED"
	PomodoroFinished    PomodoroStatus = "FINISHED"
	PomodoroInterrupted PomodoroStatus = "INTERRUPTED"
	PomodoroNotNeeded   PomodoroStatus = "NOT_NEEDED"
)

// ParsePomodoroStatus validates a status string, case-insensitively.
func ParsePomodoroStatus(s string) (PomodoroStatus, error) {
	switch st := PomodoroStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case PomodoroNotStarted, PomodoroStarted, PomodoroPaused,
		PomodoroFinished, PomodoroInterrupted, PomodoroNotNeeded:
		return st, nil
	}
	return "", fmt.Errorf("%w: pomodoro status %q", ErrInvalidValue, s)
}

// ParsePomodoroType validates a type string, case-insensitively.
func ParsePomodoroType(s string) (PomodoroType, error) {
	switch pt := PomodoroType(strings.ToUpper(strings.TrimSpace(s))); pt {
	case PomodoroWork, PomodoroBreak:
		return pt, nil
	}
	return "", fmt.Errorf("%w: pomodoro type %q must be WORK or BREAK", ErrInvalidValue, s)
}

// Pomodoro is one timed WORK or BREAK segment owned by a task.
type Pomodoro struct {
	ID        ID
	TaskID    ID
	Type      PomodoroType
	Status    PomodoroStatus
	StartTime *time.Time
	EndTime   *time.Time
	// RemainingSeconds is only set while the segment is paused.
	RemainingSeconds *int64
}

// Clone returns a deep copy of the pomodoro.
func (p *Pomodoro) Clone() *Pomodoro {
	c := *p
	if p.StartTime != nil {
		t := *p.StartTime
		c.StartTime = &t
	}
	if p.EndTime != nil {
		t := *p.EndTime
		c.EndTime = &t
	}
	if p.RemainingSeconds != nil {
		r := *p.RemainingSeconds
		c.RemainingSeconds = &r
	}
	return &c
}

// IsClosed reports whether the segment needs no further work.
func (p *Pomodoro) IsClosed() bool {
	return p.Status == PomodoroFinished || p.Status == PomodoroNotNeeded
}

// Start marks the segment as running.
func (p *Pomodoro) Start(now time.Time) {
	if p.StartTime == nil {
		p.StartTime = &now
	}
	p.RemainingSeconds = nil
	p.Status = PomodoroStarted
}

// Pause marks the segment as paused with the given time left.
func (p *Pomodoro) Pause(remaining time.Duration) {
	secs := int64(remaining / time.Second)
	if secs < 0 {
		secs = 0
	}
	p.RemainingSeconds = &secs
	p.Status = PomodoroPaused
}

// Finish marks the segment as done.
func (p *Pomodoro) Finish(now time.Time) {
	p.EndTime = &now
	p.RemainingSeconds = nil
	p.Status = PomodoroFinished
}

// Cancel closes the segment without marking it as done.
func (p *Pomodoro) Cancel() {
	p.Status = PomodoroNotNeeded
}
