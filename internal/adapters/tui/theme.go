// Package tui provides the terminal views: an interactive task picker, a
// text prompt and styled renderings of tasks and the running session.
package tui

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/xvierd/pomoflow/internal/config"
)

// resolveTheme fills empty theme fields with defaults.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

type styles struct {
	title    lipgloss.Style
	active   lipgloss.Style
	finished lipgloss.Style
	dim      lipgloss.Style
	normal   lipgloss.Style
}

func newStyles(theme config.ThemeConfig) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorTitle)),
		active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorActive)),
		finished: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorFinished)).Strikethrough(true),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorHelp)),
		normal:   lipgloss.NewStyle(),
	}
}

// IsInteractive reports whether stdin and stdout are both terminals, which
// the picker and prompt require.
func IsInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// terminalWidth returns the width of stdout, or fallback when unknown.
func terminalWidth(fallback int) int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
