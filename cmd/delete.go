package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Long:  `Delete a task and its pomodoros by ID. Use with caution - this cannot be undone.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		task, err := loadTask(ctx, args[0])
		if err != nil {
			return err
		}

		if !jsonOutput && !deleteYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete task '%s' (%s)? [y/N]: ", task.Title, task.ID)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.TrimSpace(answer)
			if answer != "y" && answer != "Y" {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
				return nil
			}
		}

		if err := app.tasks.DeleteTask(ctx, task.ID.Int64()); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		return printJSONOrText(cmd,
			map[string]any{"deleted": true, "task_id": task.ID.Int64()},
			fmt.Sprintf("Task '%s' deleted.", task.Title),
		)
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}
