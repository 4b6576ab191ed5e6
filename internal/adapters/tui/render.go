package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/pomoflow/internal/config"
	"github.com/xvierd/pomoflow/internal/domain"
)

// RenderTasks writes a styled table of tasks. The active task is
// highlighted and finished tasks are struck through.
func RenderTasks(w io.Writer, tasks []*domain.TaskWithPomodoros, theme *config.ThemeConfig) error {
	st := newStyles(resolveTheme(theme))

	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, st.dim.Render("No tasks. Add one with: pomoflow add \"title\""))
		return err
	}

	titleWidth := min(max(terminalWidth(100)-40, 20), 60)

	header := fmt.Sprintf("%-5s %-12s %-*s %-9s %s", "ID", "STATUS", titleWidth, "TITLE", "UNITS", "PRIO")
	if _, err := fmt.Fprintln(w, st.title.Render(header)); err != nil {
		return err
	}

	for _, agg := range tasks {
		t := agg.Task
		line := fmt.Sprintf("%-5s %-12s %-*s %-9s %d",
			t.ID.String(),
			string(t.Status),
			titleWidth,
			truncate(t.Title, titleWidth),
			progress(agg),
			t.Priority,
		)
		if _, err := fmt.Fprintln(w, styleFor(st, t).Render(line)); err != nil {
			return err
		}
	}
	return nil
}

// RenderTask writes one task with its full pomodoro sequence.
func RenderTask(w io.Writer, agg *domain.TaskWithPomodoros, theme *config.ThemeConfig) error {
	st := newStyles(resolveTheme(theme))
	t := agg.Task

	var b strings.Builder
	b.WriteString(st.title.Render(fmt.Sprintf("#%s %s", t.ID.String(), t.Title)) + "\n")
	if t.Description != "" {
		b.WriteString("  " + t.Description + "\n")
	}
	b.WriteString(st.dim.Render(fmt.Sprintf("  status %s · source %s · priority %d · units %s",
		t.Status, t.Source, t.Priority, progress(agg))) + "\n")
	if !t.StartDate.IsZero() {
		b.WriteString(st.dim.Render("  started "+t.StartDate.Format(time.DateTime)) + "\n")
	}
	if !t.EndDate.IsZero() {
		b.WriteString(st.dim.Render("  ended "+t.EndDate.Format(time.DateTime)) + "\n")
	}

	current := domain.CurrentPomodoro(agg.Pomodoros)
	for _, p := range agg.Pomodoros {
		line := fmt.Sprintf("  %-5s %-6s %s", p.ID.String(), p.Type, describe(p))
		switch {
		case p == current && t.IsActive():
			b.WriteString(st.active.Render("▸"+line[1:]) + "\n")
		case p.IsClosed():
			b.WriteString(st.dim.Render(line) + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSession writes the active task and its current pomodoro.
func RenderSession(w io.Writer, view *domain.SessionView, theme *config.ThemeConfig) error {
	st := newStyles(resolveTheme(theme))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(resolveTheme(theme).ColorActive)).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(st.title.Render(fmt.Sprintf("🍅 #%s %s", view.Task.Task.ID.String(), view.Task.Task.Title)) + "\n")
	b.WriteString(st.dim.Render("units "+progress(view.Task)) + "\n")
	if view.Current == nil {
		b.WriteString(st.dim.Render("all pomodoros closed"))
	} else {
		p := view.Current
		b.WriteString(st.active.Render(fmt.Sprintf("%s #%s", p.Type, p.ID.String())) + " " + describe(p))
	}

	_, err := fmt.Fprintln(w, box.Render(b.String()))
	return err
}

func styleFor(st styles, t *domain.Task) lipgloss.Style {
	switch {
	case t.IsActive():
		return st.active
	case t.IsFinished():
		return st.finished
	default:
		return st.normal
	}
}

// describe summarises a pomodoro's status with its timing details.
func describe(p *domain.Pomodoro) string {
	s := string(p.Status)
	if p.RemainingSeconds != nil {
		s += " " + formatDuration(time.Duration(*p.RemainingSeconds)*time.Second) + " left"
	}
	if p.StartTime != nil {
		s += " · started " + p.StartTime.Format(time.TimeOnly)
	}
	if p.EndTime != nil {
		s += " · ended " + p.EndTime.Format(time.TimeOnly)
	}
	return s
}

// progress reports finished WORK segments over total units, e.g. "1/3".
func progress(agg *domain.TaskWithPomodoros) string {
	done := 0
	for _, p := range agg.Pomodoros {
		if p.Type == domain.PomodoroWork && p.Status == domain.PomodoroFinished {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, agg.Units())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
