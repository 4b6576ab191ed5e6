package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completeCmd represents the complete command
var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as finished",
	Long:  `Finish a task. Pomodoros not already finished are cancelled.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		task, err := loadTask(ctx, args[0])
		if err != nil {
			return err
		}
		if err := app.tasks.CompleteTask(ctx, task); err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		return printTask(cmd, task.ID.Int64())
	},
}
