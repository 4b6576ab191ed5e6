package domain

// CurrentPomodoro selects the segment a live session should run: the first
// pomodoro, in sequence order, that is not FINISHED or NOT_NEEDED. It
// returns nil when every segment is closed or the list is empty.
func CurrentPomodoro(pomodoros []*Pomodoro) *Pomodoro {
	for _, p := range pomodoros {
		switch p.Status {
		case PomodoroStarted, PomodoroPaused, PomodoroInterrupted, PomodoroNotStarted:
			return p
		}
	}
	return nil
}

// StartedPomodoro returns the first pomodoro with status STARTED, if any.
func StartedPomodoro(pomodoros []*Pomodoro) *Pomodoro {
	for _, p := range pomodoros {
		if p.Status == PomodoroStarted {
			return p
		}
	}
	return nil
}

// IsLast reports whether p is the final segment of the sequence.
func IsLast(pomodoros []*Pomodoro, p *Pomodoro) bool {
	if len(pomodoros) == 0 || p == nil {
		return false
	}
	return pomodoros[len(pomodoros)-1].ID == p.ID
}

// SessionView is what a timer-facing consumer sees: the active task and the
// pomodoro it should run next.
type SessionView struct {
	Task    *TaskWithPomodoros
	Current *Pomodoro
}
