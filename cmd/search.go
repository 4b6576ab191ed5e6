package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomoflow/internal/domain"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search tasks by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		found, err := app.tasks.SearchTasks(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to search tasks: %w", err)
		}

		if jsonOutput {
			out := make([]domain.TaskDTO, 0, len(found))
			for _, t := range found {
				out = append(out, t.ToDTO())
			}
			return printJSON(cmd, map[string]any{
				"tasks": out,
				"count": len(out),
			})
		}

		if len(found) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching tasks.")
			return nil
		}
		for _, t := range found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Status, t.Title)
		}
		return nil
	},
}
