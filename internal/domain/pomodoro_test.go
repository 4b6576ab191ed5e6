package domain

import (
	"testing"
	"time"
)

func TestPomodoro_Transitions(t *testing.T) {
	now := time.Now()
	p := &Pomodoro{Type: PomodoroWork, Status: PomodoroNotStarted}

	p.Start(now)
	if p.Status != PomodoroStarted {
		t.Errorf("Status after Start = %v, want %v", p.Status, PomodoroStarted)
	}
	if p.StartTime == nil || !p.StartTime.Equal(now) {
		t.Errorf("StartTime = %v, want %v", p.StartTime, now)
	}

	p.Pause(90*time.Second + 500*time.Millisecond)
	if p.Status != PomodoroPaused {
		t.Errorf("Status after Pause = %v, want %v", p.Status, PomodoroPaused)
	}
	if p.RemainingSeconds == nil || *p.RemainingSeconds != 90 {
		t.Errorf("RemainingSeconds = %v, want 90", p.RemainingSeconds)
	}

	later := now.Add(time.Minute)
	p.Start(later)
	if !p.StartTime.Equal(now) {
		t.Error("resuming should keep the original StartTime")
	}
	if p.RemainingSeconds != nil {
		t.Error("resuming should clear RemainingSeconds")
	}

	p.Finish(later)
	if p.Status != PomodoroFinished || p.EndTime == nil {
		t.Errorf("after Finish status = %v, end = %v", p.Status, p.EndTime)
	}
	if !p.IsClosed() {
		t.Error("finished pomodoro should be closed")
	}
}

func TestPomodoro_PauseNegativeRemaining(t *testing.T) {
	p := &Pomodoro{}
	p.Pause(-time.Second)
	if p.RemainingSeconds == nil || *p.RemainingSeconds != 0 {
		t.Errorf("RemainingSeconds = %v, want 0", p.RemainingSeconds)
	}
}

func TestPomodoro_Cancel(t *testing.T) {
	p := &Pomodoro{Status: PomodoroInterrupted}
	p.Cancel()
	if p.Status != PomodoroNotNeeded {
		t.Errorf("Status = %v, want %v", p.Status, PomodoroNotNeeded)
	}
	if !p.IsClosed() {
		t.Error("cancelled pomodoro should be closed")
	}
}

func TestPomodoro_Clone(t *testing.T) {
	now := time.Now()
	secs := int64(10)
	p := &Pomodoro{StartTime: &now, RemainingSeconds: &secs}
	c := p.Clone()
	*c.RemainingSeconds = 20
	if *p.RemainingSeconds != 10 {
		t.Error("Clone() should not share RemainingSeconds")
	}
	if c.StartTime == p.StartTime {
		t.Error("Clone() should not share StartTime")
	}
}
