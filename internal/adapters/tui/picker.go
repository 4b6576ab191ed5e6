package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/xvierd/pomoflow/internal/config"
	"github.com/xvierd/pomoflow/internal/domain"
)

// PickerResult holds the outcome of a picker interaction. Index refers to
// the slice passed to RunTaskPicker.
type PickerResult struct {
	Index   int
	Aborted bool
}

type pickerModel struct {
	title   string
	tasks   []*domain.TaskWithPomodoros
	visible []int
	filter  textinput.Model
	cursor  int
	chosen  bool
	aborted bool
	styles  styles
}

func newPickerModel(title string, tasks []*domain.TaskWithPomodoros, theme config.ThemeConfig) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.CharLimit = 80
	ti.Width = 40
	ti.Focus()

	m := pickerModel{
		title:  title,
		tasks:  tasks,
		filter: ti,
		styles: newStyles(theme),
	}
	m.applyFilter()
	return m
}

// applyFilter recomputes the visible rows from the filter text, best fuzzy
// match first.
func (m *pickerModel) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	m.visible = m.visible[:0]

	if query == "" {
		for i := range m.tasks {
			m.visible = append(m.visible, i)
		}
	} else {
		titles := make([]string, len(m.tasks))
		for i, agg := range m.tasks {
			titles[i] = agg.Task.Title
		}
		for _, match := range fuzzy.Find(query, titles) {
			m.visible = append(m.visible, match.Index)
		}
	}

	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

func (m pickerModel) Init() tea.Cmd { return textinput.Blink }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "ctrl+k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.visible) == 0 {
				return m, nil
			}
			m.chosen = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.styles.title.Render("  "+m.title) + "\n")
	b.WriteString("  " + m.filter.View() + "\n\n")

	if len(m.visible) == 0 {
		b.WriteString(m.styles.dim.Render("    no matching tasks") + "\n")
	}

	for row, idx := range m.visible {
		agg := m.tasks[idx]
		line := fmt.Sprintf("#%-4s %-40s %s", agg.Task.ID.String(), truncate(agg.Task.Title, 40), progress(agg))
		switch {
		case row == m.cursor:
			b.WriteString("  " + m.styles.active.Render("▸ "+line) + "\n")
		case agg.Task.IsActive():
			b.WriteString("    " + m.styles.active.Render(line) + "\n")
		default:
			b.WriteString("    " + m.styles.dim.Render(line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.dim.Render("  ↑/↓ navigate · enter select · esc cancel") + "\n")

	return b.String()
}

// selected returns the index into the original slice, or -1.
func (m pickerModel) selected() int {
	if !m.chosen || m.cursor >= len(m.visible) {
		return -1
	}
	return m.visible[m.cursor]
}

// RunTaskPicker launches an interactive task picker with fuzzy filtering.
func RunTaskPicker(title string, tasks []*domain.TaskWithPomodoros, theme *config.ThemeConfig) PickerResult {
	if len(tasks) == 0 {
		return PickerResult{Aborted: true}
	}

	p := tea.NewProgram(newPickerModel(title, tasks, resolveTheme(theme)))
	result, err := p.Run()
	if err != nil {
		return PickerResult{Aborted: true}
	}

	final := result.(pickerModel)
	idx := final.selected()
	if final.aborted || idx < 0 {
		return PickerResult{Aborted: true}
	}
	return PickerResult{Index: idx}
}

// TextPromptResult holds the outcome of a text prompt.
type TextPromptResult struct {
	Value   string
	Aborted bool
}

type textPromptModel struct {
	title   string
	input   textinput.Model
	aborted bool
	styles  styles
}

func (m textPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textPromptModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.styles.title.Render("  "+m.title) + " ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.dim.Render("  enter confirm · esc cancel") + "\n")

	return b.String()
}

// RunTextPrompt launches a styled text input prompt.
func RunTextPrompt(title string, placeholder string, theme *config.ThemeConfig) TextPromptResult {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 120
	ti.Width = 50
	ti.Focus()

	m := textPromptModel{
		title:  title,
		input:  ti,
		styles: newStyles(resolveTheme(theme)),
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return TextPromptResult{Aborted: true}
	}

	final := result.(textPromptModel)
	if final.aborted {
		return TextPromptResult{Aborted: true}
	}
	return TextPromptResult{Value: strings.TrimSpace(final.input.Value())}
}
