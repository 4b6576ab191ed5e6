// Package domain contains the core business entities for pomoflow: tasks,
// the pomodoro segments they are estimated in, and the pure rules that
// govern how those segments are sequenced and selected.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common domain errors.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrPomodoroNotFound   = errors.New("pomodoro not found")
	ErrNoAvailableUnit    = errors.New("there is no available estimation unit to remove")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNoActiveTask       = errors.New("no active task")
	ErrNoCurrentPomodoro  = errors.New("no pomodoro left to run")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrInvalidEstimation  = errors.New("estimation must not be negative")
	ErrInvalidValue       = errors.New("invalid value")
)

// IsNotFound reports whether err refers to a missing task or pomodoro.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrPomodoroNotFound)
}

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NOT_STARTED"
	TaskStarted    TaskStatus = "STARTED"
	TaskPaused     TaskStatus = "PAUSED"
	TaskFinished   TaskStatus = "FINISHED"
)

// ParseTaskStatus validates a status string, case-insensitively.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TaskNotStarted, TaskStarted, TaskPaused, TaskFinished:
		return st, nil
	}
	return "", fmt.Errorf("%w: task status %q must be one of NOT_STARTED, STARTED, PAUSED, FINISHED", ErrInvalidValue, s)
}

// TaskSource tags where a task came from. Only LOCAL is produced today;
// the others are reserved for remote integrations.
type TaskSource string

const (
	SourceLocal     TaskSource = "LOCAL"
	SourceJira      TaskSource = "JIRA"
	SourceTrello    TaskSource = "TRELLO"
	SourceNotion    TaskSource = "NOTION"
	SourceFirestore TaskSource = "FIRESTORE"
)

// ParseTaskSource validates a source string, case-insensitively.
func ParseTaskSource(s string) (TaskSource, error) {
	switch src := TaskSource(strings.ToUpper(strings.TrimSpace(s))); src {
	case SourceLocal, SourceJira, SourceTrello, SourceNotion, SourceFirestore:
		return src, nil
	}
	return "", fmt.Errorf("%w: task source %q", ErrInvalidValue, s)
}

// Task represents a unit of tracked work.
type Task struct {
	ID          ID
	Title       string
	Description string
	Status      TaskStatus
	Source      TaskSource
	StartDate   time.Time
	EndDate     time.Time
	// Priority orders tasks; lower is more urgent.
	Priority int
}

// NewTask creates an unsaved task with the given title.
func NewTask(title string) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTaskTitle
	}
	return &Task{
		Title:  title,
		Status: TaskNotStarted,
		Source: SourceLocal,
	}, nil
}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// IsActive returns true if the task is the one currently being worked on.
func (t *Task) IsActive() bool {
	return t.Status == TaskStarted
}

// IsFinished returns true if the task has been closed.
func (t *Task) IsFinished() bool {
	return t.Status == TaskFinished
}

// TaskWithPomodoros is a task together with its pomodoros in creation order.
// It is assembled by queries and never stored directly.
type TaskWithPomodoros struct {
	Task      *Task
	Pomodoros []*Pomodoro
}

// Units returns the number of estimation units in the sequence.
func (a *TaskWithPomodoros) Units() int {
	return len(a.Pomodoros) / 2
}
