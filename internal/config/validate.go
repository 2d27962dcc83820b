package config

import (
	"fmt"
	"slices"
	"strings"
)

// MaxBatchSize caps the rows per multi-row INSERT statement. PostgreSQL
// allows at most 65535 bind parameters per statement and an entry row uses 9.
const MaxBatchSize = 5000

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be >= 1 (got %d)", c.Database.MaxConns)
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be between 0 and max_conns (got %d)", c.Database.MinConns)
	}

	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if err := c.Import.validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	return nil
}

func (l *LogConfig) validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(l.Level)) {
		return fmt.Errorf("level must be one of debug, info, warn, error (got %q)", l.Level)
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(l.Format)) {
		return fmt.Errorf("format must be json or text (got %q)", l.Format)
	}
	return nil
}

func (i *ImportConfig) validate() error {
	if strings.TrimSpace(i.Workdir) == "" && strings.TrimSpace(i.TempDir) == "" {
		return fmt.Errorf("workdir or temp_dir must be set")
	}
	if i.BatchSize < 1 || i.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch_size must be between 1 and %d (got %d)", MaxBatchSize, i.BatchSize)
	}
	return nil
}
