package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/youyoumu/hanayomi/internal/app"
	"github.com/youyoumu/hanayomi/internal/app/importer"
	"github.com/youyoumu/hanayomi/internal/config"
)

func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return config.LoadFrom(path)
}

// openApp loads the configuration and wires the application. adjust, when
// set, may override configuration values from command flags.
func openApp(cmd *cobra.Command, adjust func(*config.Config), opts ...importer.Option) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	logger := app.NewLogger(cfg.Log)
	return app.Open(cmd.Context(), cfg, logger, opts...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid dictionary id %q", s)
	}
	return id, nil
}
