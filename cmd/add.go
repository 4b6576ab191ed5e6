package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/adapters/git"
	"github.com/xvierd/pomoflow/internal/adapters/tui"
	"github.com/xvierd/pomoflow/internal/domain"
)

var (
	addDescription string
	addEstimation  int
	addPriority    int
	addSource      string
	addFinished    bool
	addFromBranch  bool
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task estimated in WORK+BREAK pomodoro units.

With --from-branch the title is derived from the current git branch, for
example "feature/ABC-123-fix-login" becomes "ABC 123 fix login". Without a
title in an interactive terminal the title is prompted for.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if addFromBranch {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ArbitraryArgs(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		title := strings.Join(args, " ")
		if addFromBranch {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			title, err = git.BranchTitle(ctx, app.git, wd)
			if err != nil {
				return fmt.Errorf("failed to derive title from branch: %w", err)
			}
		}
		if title == "" && !jsonOutput && tui.IsInteractive() {
			prompt := tui.RunTextPrompt("Task title:", "what are you working on?", &app.config.Theme)
			if prompt.Aborted {
				return nil
			}
			title = prompt.Value
		}

		task, err := domain.NewTask(title)
		if err != nil {
			return err
		}
		task.Description = addDescription
		task.Priority = addPriority
		if addSource != "" {
			if task.Source, err = domain.ParseTaskSource(addSource); err != nil {
				return err
			}
		}
		if addFinished {
			task.Status = domain.TaskFinished
		}

		units := app.config.Estimation.DefaultUnits
		if cmd.Flags().Changed("estimation") {
			units = addEstimation
		}

		id, err := app.tasks.AddTaskWithEstimation(ctx, task, units)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		if jsonOutput {
			return printTask(cmd, id.Int64())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task added: %s (ID: %s, %d pomodoros)\n", task.Title, id, units)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	addCmd.Flags().IntVarP(&addEstimation, "estimation", "e", 0, "Number of WORK+BREAK units (default from config)")
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", 0, "Task priority, lower is more urgent")
	addCmd.Flags().StringVar(&addSource, "source", "", "Task source tag (LOCAL, JIRA, TRELLO, NOTION, FIRESTORE)")
	addCmd.Flags().BoolVar(&addFinished, "finished", false, "Record the task as already finished")
	addCmd.Flags().BoolVar(&addFromBranch, "from-branch", false, "Use the current git branch as the title")
}
