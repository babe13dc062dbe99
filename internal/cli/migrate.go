package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Long:  "Create the database tables. Safe to run repeatedly; existing tables are left alone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := opts.withStore(cmd.Context(), func(store Store) error {
				return store.Migrate(cmd.Context())
			})
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			slog.Info("schema applied")
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
