package main

import (
	"github.com/spf13/cobra"

	"github.com/youyoumu/hanayomi/internal/app/importer"
	"github.com/youyoumu/hanayomi/internal/config"
)

func newImportCommand() *cobra.Command {
	var (
		noValidate bool
		quiet      bool
		batchSize  int
	)

	cmd := &cobra.Command{
		Use:   "import <archive.zip>",
		Short: "Import a Yomitan dictionary archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []importer.Option
			if !quiet {
				opts = append(opts, importer.WithProgress(newColorProgress(cmd.ErrOrStderr())))
			}

			a, err := openApp(cmd, func(cfg *config.Config) {
				if noValidate {
					cfg.Import.Validate = false
				}
				if batchSize > 0 {
					cfg.Import.BatchSize = min(batchSize, config.MaxBatchSize)
				}
			}, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Importer.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&noValidate, "no-validate", false, "skip constraint validation of definitions")
	flags.BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	flags.IntVar(&batchSize, "batch-size", 0, "rows per INSERT statement (default from config)")
	return cmd
}
