package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskFromDTO_Defaults(t *testing.T) {
	task, err := TaskFromDTO(TaskDTO{})
	if err != nil {
		t.Fatalf("TaskFromDTO() error = %v", err)
	}
	if task.ID.IsPersisted() {
		t.Error("ID should be unsaved")
	}
	if task.Title != "" || task.Description != "" {
		t.Errorf("text fields = %q, %q, want empty", task.Title, task.Description)
	}
	if task.Status != TaskNotStarted {
		t.Errorf("Status = %v, want %v", task.Status, TaskNotStarted)
	}
	if task.Source != SourceLocal {
		t.Errorf("Source = %v, want %v", task.Source, SourceLocal)
	}
	if !task.StartDate.IsZero() || !task.EndDate.IsZero() {
		t.Error("dates should be zero")
	}
	if task.Priority != 0 {
		t.Errorf("Priority = %d, want 0", task.Priority)
	}
}

func TestTaskDTO_RoundTrip(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	task := &Task{
		ID:          PersistedID(1),
		Title:       "Title",
		Description: "Description",
		Status:      TaskPaused,
		Source:      SourceTrello,
		StartDate:   start,
		EndDate:     start.Add(24 * time.Hour),
		Priority:    1,
	}

	got, err := TaskFromDTO(task.ToDTO())
	if err != nil {
		t.Fatalf("TaskFromDTO() error = %v", err)
	}
	if got.ID != task.ID || got.Title != task.Title || got.Description != task.Description ||
		got.Status != task.Status || got.Source != task.Source || got.Priority != task.Priority {
		t.Errorf("round trip = %+v, want %+v", got, task)
	}
	if !got.StartDate.Equal(task.StartDate) || !got.EndDate.Equal(task.EndDate) {
		t.Errorf("dates = %v..%v, want %v..%v", got.StartDate, got.EndDate, task.StartDate, task.EndDate)
	}
}

func TestTaskFromDTO_InvalidStatus(t *testing.T) {
	if _, err := TaskFromDTO(TaskDTO{Status: "TODO"}); err == nil {
		t.Error("TaskFromDTO() should reject unknown status")
	}
}

func TestPomodoroFromDTO_Defaults(t *testing.T) {
	p, err := PomodoroFromDTO(PomodoroDTO{TaskID: -1})
	if err != nil {
		t.Fatalf("PomodoroFromDTO() error = %v", err)
	}
	if p.Type != PomodoroWork {
		t.Errorf("Type = %v, want %v", p.Type, PomodoroWork)
	}
	if p.Status != PomodoroNotStarted {
		t.Errorf("Status = %v, want %v", p.Status, PomodoroNotStarted)
	}
	if p.TaskID.IsPersisted() {
		t.Error("TaskID -1 should map to an unsaved owner")
	}
	if p.StartTime != nil || p.EndTime != nil || p.RemainingSeconds != nil {
		t.Error("optional fields should stay nil")
	}
	if p.ToDTO().TaskID != -1 {
		t.Errorf("ToDTO().TaskID = %d, want -1", p.ToDTO().TaskID)
	}
}

func TestPomodoroFromDTO_MissingTaskID(t *testing.T) {
	var d PomodoroDTO
	if err := json.Unmarshal([]byte(`{"type":"WORK"}`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	p, err := PomodoroFromDTO(d)
	if err != nil {
		t.Fatalf("PomodoroFromDTO() error = %v", err)
	}
	if p.TaskID.IsPersisted() {
		t.Error("absent task_id should map to an unsaved owner")
	}
	if got := p.ToDTO().TaskID; got != -1 {
		t.Errorf("ToDTO().TaskID = %d, want -1", got)
	}
}

func TestPomodoroDTO_RoundTrip(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	end := start.Add(25 * time.Minute)
	remaining := int64(120)
	p := &Pomodoro{
		ID:               PersistedID(4),
		TaskID:           PersistedID(2),
		Type:             PomodoroBreak,
		Status:           PomodoroPaused,
		StartTime:        &start,
		EndTime:          &end,
		RemainingSeconds: &remaining,
	}

	got, err := PomodoroFromDTO(p.ToDTO())
	if err != nil {
		t.Fatalf("PomodoroFromDTO() error = %v", err)
	}
	if got.ID != p.ID || got.TaskID != p.TaskID || got.Type != p.Type || got.Status != p.Status {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
	if got.StartTime == nil || !got.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, start)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, end)
	}
	if got.RemainingSeconds == nil || *got.RemainingSeconds != remaining {
		t.Errorf("RemainingSeconds = %v, want %d", got.RemainingSeconds, remaining)
	}
}

func TestTaskWithPomodoros_ToDTO(t *testing.T) {
	task := &Task{ID: PersistedID(9), Title: "agg", Status: TaskNotStarted, Source: SourceLocal}
	unit := NewEstimationUnit(task)
	agg := &TaskWithPomodoros{Task: task, Pomodoros: unit[:]}

	dto := agg.ToDTO()
	if dto.Task.ID == nil || *dto.Task.ID != 9 {
		t.Errorf("Task.ID = %v, want 9", dto.Task.ID)
	}
	if len(dto.Pomodoros) != 2 {
		t.Fatalf("len(Pomodoros) = %d, want 2", len(dto.Pomodoros))
	}
	if dto.Pomodoros[0].Type != "WORK" || dto.Pomodoros[1].Type != "BREAK" {
		t.Errorf("types = %s,%s, want WORK,BREAK", dto.Pomodoros[0].Type, dto.Pomodoros[1].Type)
	}
	if dto.Pomodoros[0].TaskID != 9 {
		t.Errorf("Pomodoros[0].TaskID = %d, want 9", dto.Pomodoros[0].TaskID)
	}
}
