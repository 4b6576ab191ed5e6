// Package cmd provides the CLI commands for pomoflow.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/adapters/tui"
	"github.com/xvierd/pomoflow/internal/domain"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	dbPath     string
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pomoflow",
	Short: "pomoflow - tasks estimated and worked in pomodoros",
	Long: `pomoflow tracks tasks as sequences of WORK and BREAK pomodoros.

Run "pomoflow" with no arguments to see the active task and its current
pomodoro, or to pick a task to work on when none is active.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runOverview,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: ~/.pomoflow/pomoflow.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("pomoflow\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(activeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
}

// runOverview shows the running session. With no active task in an
// interactive terminal it offers a picker over the unfinished tasks.
func runOverview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	view, err := app.session.Current(ctx)
	if err == nil {
		return printSession(cmd, view)
	}
	if !isNoActiveTask(err) {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if jsonOutput || !tui.IsInteractive() {
		return printJSONOrText(cmd, map[string]any{"active_task": nil}, "No active task.")
	}

	all, err := app.tasks.GetTasksWithPomodoros(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	open := unfinished(all)
	if len(open) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), `No tasks yet. Add one with "pomoflow add <title>".`)
		return nil
	}

	picked := tui.RunTaskPicker("Work on:", open, &app.config.Theme)
	if picked.Aborted {
		return nil
	}
	task := open[picked.Index].Task
	if err := app.tasks.SetActiveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to activate task: %w", err)
	}

	view, err = app.session.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return printSession(cmd, view)
}

func unfinished(all []*domain.TaskWithPomodoros) []*domain.TaskWithPomodoros {
	var open []*domain.TaskWithPomodoros
	for _, agg := range all {
		if !agg.Task.IsFinished() {
			open = append(open, agg)
		}
	}
	return open
}
