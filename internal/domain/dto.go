package domain

import "time"

// TaskDTO is the transport form of a task. Timestamps are epoch seconds and
// an absent ID means the task has not been persisted.
type TaskDTO struct {
	ID          *int64 `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Source      string `json:"source"`
	StartDate   int64  `json:"start_date"`
	EndDate     int64  `json:"end_date"`
	Priority    int    `json:"priority"`
}

// PomodoroDTO is the transport form of a pomodoro.
type PomodoroDTO struct {
	ID               *int64 `json:"id,omitempty"`
	Type             string `json:"type"`
	Status           string `json:"status"`
	StartTime        *int64 `json:"start_time,omitempty"`
	EndTime          *int64 `json:"end_time,omitempty"`
	RemainingSeconds *int64 `json:"remaining_seconds,omitempty"`
	TaskID           int64  `json:"task_id"`
}

// TaskWithPomodorosDTO is the transport form of a task aggregate.
type TaskWithPomodorosDTO struct {
	Task      TaskDTO       `json:"task"`
	Pomodoros []PomodoroDTO `json:"pomodoros"`
}

// ToDTO converts a task to its transport form.
func (t *Task) ToDTO() TaskDTO {
	return TaskDTO{
		ID:          idPtr(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Source:      string(t.Source),
		StartDate:   epoch(t.StartDate),
		EndDate:     epoch(t.EndDate),
		Priority:    t.Priority,
	}
}

// TaskFromDTO converts a transport task, applying defaults to unset fields.
// Unknown status or source values are rejected.
func TaskFromDTO(d TaskDTO) (*Task, error) {
	t := &Task{
		Title:       d.Title,
		Description: d.Description,
		Status:      TaskNotStarted,
		Source:      SourceLocal,
		StartDate:   fromEpoch(d.StartDate),
		EndDate:     fromEpoch(d.EndDate),
		Priority:    d.Priority,
	}
	if d.ID != nil {
		t.ID = PersistedID(*d.ID)
	}
	if d.Status != "" {
		st, err := ParseTaskStatus(d.Status)
		if err != nil {
			return nil, err
		}
		t.Status = st
	}
	if d.Source != "" {
		src, err := ParseTaskSource(d.Source)
		if err != nil {
			return nil, err
		}
		t.Source = src
	}
	return t, nil
}

// ToDTO converts a pomodoro to its transport form. An unsaved owner is
// reported as task_id -1.
func (p *Pomodoro) ToDTO() PomodoroDTO {
	return PomodoroDTO{
		ID:               idPtr(p.ID),
		Type:             string(p.Type),
		Status:           string(p.Status),
		StartTime:        timePtr(p.StartTime),
		EndTime:          timePtr(p.EndTime),
		RemainingSeconds: copyInt64(p.RemainingSeconds),
		TaskID:           p.TaskID.Int64(),
	}
}

// PomodoroFromDTO converts a transport pomodoro, applying defaults to unset
// fields. A task_id that is absent, zero or -1 means an unsaved owner;
// storage never assigns IDs below 1.
func PomodoroFromDTO(d PomodoroDTO) (*Pomodoro, error) {
	p := &Pomodoro{
		Type:             PomodoroWork,
		Status:           PomodoroNotStarted,
		StartTime:        fromEpochPtr(d.StartTime),
		EndTime:          fromEpochPtr(d.EndTime),
		RemainingSeconds: copyInt64(d.RemainingSeconds),
	}
	if d.ID != nil {
		p.ID = PersistedID(*d.ID)
	}
	if d.TaskID > 0 {
		p.TaskID = PersistedID(d.TaskID)
	}
	if d.Type != "" {
		pt, err := ParsePomodoroType(d.Type)
		if err != nil {
			return nil, err
		}
		p.Type = pt
	}
	if d.Status != "" {
		st, err := ParsePomodoroStatus(d.Status)
		if err != nil {
			return nil, err
		}
		p.Status = st
	}
	return p, nil
}

// ToDTO converts an aggregate to its transport form.
func (a *TaskWithPomodoros) ToDTO() TaskWithPomodorosDTO {
	out := TaskWithPomodorosDTO{
		Task:      a.Task.ToDTO(),
		Pomodoros: make([]PomodoroDTO, 0, len(a.Pomodoros)),
	}
	for _, p := range a.Pomodoros {
		out.Pomodoros = append(out.Pomodoros, p.ToDTO())
	}
	return out
}

func idPtr(id ID) *int64 {
	v, ok := id.Value()
	if !ok {
		return nil
	}
	return &v
}

func epoch(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromEpoch(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

func timePtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

func fromEpochPtr(secs *int64) *time.Time {
	if secs == nil {
		return nil
	}
	t := time.Unix(*secs, 0)
	return &t
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
