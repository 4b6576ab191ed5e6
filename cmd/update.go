package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/domain"
)

var (
	updateTitle       string
	updateDescription string
	updatePriority    int
	updateStatus      string
	updateSource      string
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update task fields",
	Long:  `Update the fields given as flags. Pomodoros are left untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		task, err := loadTask(ctx, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("title") {
			if strings.TrimSpace(updateTitle) == "" {
				return domain.ErrEmptyTaskTitle
			}
			task.Title = updateTitle
		}
		if flags.Changed("description") {
			task.Description = updateDescription
		}
		if flags.Changed("priority") {
			task.Priority = updatePriority
		}
		if flags.Changed("status") {
			if task.Status, err = domain.ParseTaskStatus(updateStatus); err != nil {
				return err
			}
		}
		if flags.Changed("source") {
			if task.Source, err = domain.ParseTaskSource(updateSource); err != nil {
				return err
			}
		}

		if err := app.tasks.UpdateTask(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return printTask(cmd, task.ID.Int64())
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "New title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().IntVarP(&updatePriority, "priority", "p", 0, "New priority")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status (NOT_STARTED, STARTED, PAUSED, FINISHED)")
	updateCmd.Flags().StringVar(&updateSource, "source", "", "New source tag")
}
