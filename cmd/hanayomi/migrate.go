package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/youyoumu/hanayomi/internal/config"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, func(cfg *config.Config) {
				cfg.Database.AutoMigrate = true
			})
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), `{"migrated":true}`)
			return nil
		},
	}
}
