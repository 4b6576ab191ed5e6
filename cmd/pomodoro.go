package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/config"
	"github.com/xvierd/pomoflow/internal/domain"
)

var pauseRemaining time.Duration

// pomodoroCmd groups the commands driving the active task's pomodoros.
var pomodoroCmd = &cobra.Command{
	Use:     "pomodoro",
	Aliases: []string{"pomo"},
	Short:   "Drive the active task's current pomodoro",
	Long: `Drive the active task's current pomodoro: the first of its pomodoros
that is neither finished nor cancelled.`,
}

var pomodoroStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the current pomodoro",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := app.session.Start(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to start pomodoro: %w", err)
		}
		return printSession(cmd, view)
	},
}

var pomodoroPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the current pomodoro",
	Long: `Pause the current pomodoro, recording the time left on it.

Without --remaining the time left is derived from the configured segment
length and the time the pomodoro was started.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		remaining := pauseRemaining
		if !cmd.Flags().Changed("remaining") {
			view, err := app.session.Current(ctx)
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}
			if view.Current == nil {
				return domain.ErrNoCurrentPomodoro
			}
			remaining = remainingTime(view.Task.Pomodoros, view.Current, app.config.Pomodoro, time.Now())
		}
		if remaining < 0 {
			return fmt.Errorf("%w: remaining time must not be negative", domain.ErrInvalidValue)
		}

		view, err := app.session.Pause(ctx, remaining)
		if err != nil {
			return fmt.Errorf("failed to pause pomodoro: %w", err)
		}
		return printSession(cmd, view)
	},
}

var pomodoroSkipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the current pomodoro",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.session.Skip(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to skip pomodoro: %w", err)
		}
		if result.LastSegment && !jsonOutput {
			fmt.Fprintln(cmd.OutOrStdout(), "That was the last pomodoro of this task.")
		}
		return printSession(cmd, result.View)
	},
}

var pomodoroDoneCmd = &cobra.Command{
	Use:   "done [pomodoro-id]",
	Short: "Finish a pomodoro",
	Long:  `Finish the current pomodoro, or the pomodoro with the given ID.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 0 {
			view, err := app.session.Complete(ctx)
			if err != nil {
				return fmt.Errorf("failed to complete pomodoro: %w", err)
			}
			return printSession(cmd, view)
		}

		p, err := loadPomodoro(ctx, args[0])
		if err != nil {
			return err
		}
		if err := app.tasks.CompletePomodoro(ctx, p); err != nil {
			return fmt.Errorf("failed to complete pomodoro: %w", err)
		}
		return printPomodoro(cmd, p, "finished")
	},
}

var pomodoroCancelCmd = &cobra.Command{
	Use:   "cancel [pomodoro-id]",
	Short: "Mark a pomodoro as not needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := loadPomodoro(ctx, args[0])
		if err != nil {
			return err
		}
		if err := app.tasks.CancelPomodoro(ctx, p); err != nil {
			return fmt.Errorf("failed to cancel pomodoro: %w", err)
		}
		return printPomodoro(cmd, p, "cancelled")
	},
}

// remainingTime estimates the time left on p, one of the segments in seq,
// from the configured segment length. A pomodoro already paused keeps its
// recorded value.
func remainingTime(seq []*domain.Pomodoro, p *domain.Pomodoro, cfg config.PomodoroConfig, now time.Time) time.Duration {
	if p.Status == domain.PomodoroPaused && p.RemainingSeconds != nil {
		return time.Duration(*p.RemainingSeconds) * time.Second
	}

	length := cfg.SegmentLength(p.Type == domain.PomodoroBreak, breakNumber(seq, p))
	if p.Status != domain.PomodoroStarted || p.StartTime == nil {
		return length
	}

	left := length - now.Sub(*p.StartTime)
	if left < 0 {
		return 0
	}
	return left.Truncate(time.Second)
}

// breakNumber returns the 1-based position of p among the BREAK segments of
// seq, or 0 when p is not one of them.
func breakNumber(seq []*domain.Pomodoro, p *domain.Pomodoro) int {
	n := 0
	for _, s := range seq {
		if s.Type != domain.PomodoroBreak {
			continue
		}
		n++
		if s.ID == p.ID {
			return n
		}
	}
	return 0
}

func init() {
	pomodoroPauseCmd.Flags().DurationVarP(&pauseRemaining, "remaining", "r", 0, "Time left on the pomodoro, e.g. 12m30s")

	pomodoroCmd.AddCommand(pomodoroStartCmd)
	pomodoroCmd.AddCommand(pomodoroPauseCmd)
	pomodoroCmd.AddCommand(pomodoroSkipCmd)
	pomodoroCmd.AddCommand(pomodoroDoneCmd)
	pomodoroCmd.AddCommand(pomodoroCancelCmd)
}
