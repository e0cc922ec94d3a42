package main

import (
	"github.com/spf13/cobra"

	"github.com/deepesdl/deep-code/internal/history"
	"github.com/deepesdl/deep-code/internal/output"
	"github.com/deepesdl/deep-code/internal/ui/static"
)

func newHistoryCmd() *cobra.Command {
	var (
		orphaned bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List past publish attempts",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `List past publish attempts, newest first.

An attempt is orphaned when its branch was pushed to your fork but the pull
request could not be opened. Open the pull request by hand or delete the
branch from the fork.`,
		Example: `  deep-code history              # Last 20 attempts
  deep-code history -n 0         # All attempts
  deep-code history --orphaned   # Branches without a pull request`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			path, err := history.DefaultPath()
			if err != nil {
				return err
			}
			h, err := history.Load(path)
			if err != nil {
				return err
			}

			entries := h.Recent(limit)
			if orphaned {
				entries = h.Orphaned()
			}
			if len(entries) == 0 {
				out.Println("No publish attempts recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, static.HistoryTableRow(e))
			}
			out.Print(static.RenderTable(static.HistoryHeaders, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&orphaned, "orphaned", false, "Only show pushed branches without a pull request")
	cmd.Flags().IntVarP(&limit, "number", "n", 20, "Number of attempts to show (0 for all)")

	return cmd
}
