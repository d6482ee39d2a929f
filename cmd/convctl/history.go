package main

import (
	"convenios-dashboard/internal/edition"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <case-id>",
		Short: "Print the edit history of a case, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(a.output)
			if err != nil {
				return err
			}
			service := edition.NewService(edition.NewRepository(a.db))
			entries, err := service.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.CreatedAt.Format(edition.TimestampLayout), e.Field, e.Value, e.Actor})
			}
			return printOutput(cmd.OutOrStdout(), format, entries, []string{"when", "field", "value", "actor"}, rows)
		},
	}
}

func newRebuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-editions",
		Short: "Re-derive the current edition values from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service := edition.NewService(edition.NewRepository(a.db))
			n, err := service.RebuildEditions(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("editions rebuilt", zap.Int("editions", n))
			fmt.Fprintf(cmd.OutOrStdout(), "rebuilt %d editions\n", n)
			return nil
		},
	}
}
