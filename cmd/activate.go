package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/adapters/tui"
	"github.com/xvierd/pomoflow/internal/domain"
)

// activateCmd represents the activate command
var activateCmd = &cobra.Command{
	Use:   "activate [task-id]",
	Short: "Make a task the active one",
	Long: `Make a task the single active task. The previously active task is
paused and its running pomodoro interrupted.

Without an ID an interactive picker is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var task *domain.Task
		if len(args) == 1 {
			var err error
			if task, err = loadTask(ctx, args[0]); err != nil {
				return err
			}
		} else {
			if !tui.IsInteractive() {
				return errors.New("task id required when not running in a terminal")
			}
			all, err := app.tasks.GetTasksWithPomodoros(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}
			open := unfinished(all)
			if len(open) == 0 {
				return errors.New("no unfinished tasks to activate")
			}
			picked := tui.RunTaskPicker("Activate:", open, &app.config.Theme)
			if picked.Aborted {
				return nil
			}
			task = open[picked.Index].Task
		}

		if err := app.tasks.SetActiveTask(ctx, task); err != nil {
			return fmt.Errorf("failed to activate task: %w", err)
		}
		return printTask(cmd, task.ID.Int64())
	},
}

// activeCmd represents the active command
var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the active task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		agg, err := app.tasks.GetActiveTaskWithPomodoros(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get active task: %w", err)
		}
		if agg == nil {
			return printJSONOrText(cmd, map[string]any{"active_task": nil}, "No active task.")
		}
		if jsonOutput {
			return printJSON(cmd, map[string]any{"active_task": agg.ToDTO()})
		}
		return tui.RenderTask(cmd.OutOrStdout(), agg, &app.config.Theme)
	},
}
