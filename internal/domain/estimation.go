package domain

// Estimation is measured in units; one unit is a WORK segment immediately
// followed by a BREAK segment. Units are only ever appended to or removed
// from the end of a task's sequence.

// SegmentStatusFor returns the status new segments get when appended to a
// task in the given state. Segments added to a finished task are born
// finished.
func SegmentStatusFor(status TaskStatus) PomodoroStatus {
	if status == TaskFinished {
		return PomodoroFinished
	}
	return PomodoroNotStarted
}

// NewEstimationUnit builds the WORK+BREAK pair appended for one unit of
// estimation on task. The pair is unsaved.
func NewEstimationUnit(task *Task) [2]*Pomodoro {
	status := SegmentStatusFor(task.Status)
	return [2]*Pomodoro{
		{TaskID: task.ID, Type: PomodoroWork, Status: status},
		{TaskID: task.ID, Type: PomodoroBreak, Status: status},
	}
}

// ReopenForEstimation returns the status a task takes when estimation is
// added to it. A finished task is reopened as paused.
func ReopenForEstimation(status TaskStatus) TaskStatus {
	if status == TaskFinished {
		return TaskPaused
	}
	return status
}

// RemovableUnit returns the trailing pair of pomodoros that a decrease in
// estimation would delete. Both must still be NOT_STARTED; otherwise
// ErrNoAvailableUnit is returned and nothing may be removed.
func RemovableUnit(pomodoros []*Pomodoro) ([2]*Pomodoro, error) {
	n := len(pomodoros)
	if n < 2 {
		return [2]*Pomodoro{}, ErrNoAvailableUnit
	}
	last := [2]*Pomodoro{pomodoros[n-2], pomodoros[n-1]}
	for _, p := range last {
		if p.Status != PomodoroNotStarted {
			return [2]*Pomodoro{}, ErrNoAvailableUnit
		}
	}
	return last, nil
}

// IsWellFormed reports whether pomodoros alternate WORK, BREAK, WORK, ...
// and contain a whole number of units.
func IsWellFormed(pomodoros []*Pomodoro) bool {
	if len(pomodoros)%2 != 0 {
		return false
	}
	for i, p := range pomodoros {
		want := PomodoroWork
		if i%2 == 1 {
			want = PomodoroBreak
		}
		if p.Type != want {
			return false
		}
	}
	return true
}
