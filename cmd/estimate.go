package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	estimateAdd    bool
	estimateRemove bool
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [task-id]",
	Short: "Add or remove one WORK+BREAK unit",
	Long: `Grow or shrink a task's estimation by one WORK+BREAK unit.

Adding a unit to a finished task reopens it. Removing only succeeds when
the last two pomodoros have not been started.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if estimateAdd == estimateRemove {
			return errors.New("specify exactly one of --add or --remove")
		}

		ctx := cmd.Context()
		task, err := loadTask(ctx, args[0])
		if err != nil {
			return err
		}

		if estimateAdd {
			err = app.tasks.IncreaseEstimation(ctx, task)
		} else {
			err = app.tasks.DecreaseEstimation(ctx, task)
		}
		if err != nil {
			return fmt.Errorf("failed to change estimation: %w", err)
		}
		return printTask(cmd, task.ID.Int64())
	},
}

func init() {
	estimateCmd.Flags().BoolVar(&estimateAdd, "add", false, "Append a WORK+BREAK unit")
	estimateCmd.Flags().BoolVar(&estimateRemove, "remove", false, "Remove the last WORK+BREAK unit")
}
