// Command hanayomi imports Yomitan dictionary archives into PostgreSQL and
// queries the imported data.
//
// Configuration is read from --config, $CONFIG_PATH or ./hanayomi.yaml, with
// environment variables taking precedence. Command results are printed to
// stdout as JSON; logs and progress go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/youyoumu/hanayomi/internal/app"
	"github.com/youyoumu/hanayomi/internal/domain"
)

var configFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hanayomi",
		Short:         "Import Yomitan dictionaries into PostgreSQL",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "",
		"path to the YAML config file (default $CONFIG_PATH or ./hanayomi.yaml)")

	root.AddCommand(
		newImportCommand(),
		newDictCommand(),
		newEntriesCommand(),
		newTagsCommand(),
		newMigrateCommand(),
	)
	return root
}

// exitCode maps the error taxonomy onto process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 2
	case errors.Is(err, domain.ErrArchive), errors.Is(err, domain.ErrSchema):
		return 3
	case errors.Is(err, domain.ErrStore):
		return 4
	default:
		return 1
	}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
}
