package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/adapters/tui"
	"github.com/xvierd/pomoflow/internal/domain"
)

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// printJSONOrText writes v as JSON with --json, or the message otherwise.
func printJSONOrText(cmd *cobra.Command, v any, message string) error {
	if jsonOutput {
		return printJSON(cmd, v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}

// printTask reloads a task with its pomodoros and prints it.
func printTask(cmd *cobra.Command, id int64) error {
	agg, err := app.tasks.GetTaskWithPomodoros(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if agg == nil {
		return fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound)
	}
	if jsonOutput {
		return printJSON(cmd, agg.ToDTO())
	}
	return tui.RenderTask(cmd.OutOrStdout(), agg, &app.config.Theme)
}

func printSession(cmd *cobra.Command, view *domain.SessionView) error {
	if jsonOutput {
		out := map[string]any{
			"task":    view.Task.ToDTO(),
			"current": nil,
		}
		if view.Current != nil {
			out["current"] = view.Current.ToDTO()
		}
		return printJSON(cmd, out)
	}
	return tui.RenderSession(cmd.OutOrStdout(), view, &app.config.Theme)
}

func printPomodoro(cmd *cobra.Command, p *domain.Pomodoro, verb string) error {
	if jsonOutput {
		return printJSON(cmd, p.ToDTO())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pomodoro %s (%s) %s.\n", p.ID, p.Type, verb)
	return nil
}

// parseID parses a positive numeric ID argument.
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive integer", kind, arg)
	}
	return id, nil
}

// loadTask resolves a task ID argument to a stored task.
func loadTask(ctx context.Context, arg string) (*domain.Task, error) {
	id, err := parseID("task", arg)
	if err != nil {
		return nil, err
	}
	task, err := app.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrTaskNotFound)
	}
	return task, nil
}

// loadPomodoro resolves a pomodoro ID argument to a stored pomodoro.
func loadPomodoro(ctx context.Context, arg string) (*domain.Pomodoro, error) {
	id, err := parseID("pomodoro", arg)
	if err != nil {
		return nil, err
	}
	p, err := app.tasks.GetPomodoro(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pomodoro: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("pomodoro %d: %w", id, domain.ErrPomodoroNotFound)
	}
	return p, nil
}

func isNoActiveTask(err error) bool {
	return errors.Is(err, domain.ErrNoActiveTask)
}
