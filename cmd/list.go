package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/adapters/tui"
	"github.com/xvierd/pomoflow/internal/domain"
)

var listAll bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List unfinished tasks with their pomodoro progress. Use --all to include finished tasks.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := app.tasks.GetTasksWithPomodoros(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		tasks := all
		if !listAll {
			tasks = unfinished(all)
		}

		if jsonOutput {
			out := make([]domain.TaskWithPomodorosDTO, 0, len(tasks))
			for _, agg := range tasks {
				out = append(out, agg.ToDTO())
			}
			return printJSON(cmd, map[string]any{
				"tasks": out,
				"count": len(out),
			})
		}

		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
			return nil
		}
		return tui.RenderTasks(cmd.OutOrStdout(), tasks, &app.config.Theme)
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include finished tasks")
}
