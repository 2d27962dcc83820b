package config

import (
	"path/filepath"
	"time"
)

// Config is the root application configuration. It is constructed once at
// startup and passed explicitly to every component that needs it.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Import   ImportConfig   `yaml:"import"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// ImportConfig holds dictionary import settings.
type ImportConfig struct {
	// Workdir is the application's working directory. TempDir defaults to
	// a "temp" directory inside it.
	Workdir   string `yaml:"workdir"    env:"HANAYOMI_WORKDIR"    env-default:"./.hanayomi"`
	TempDir   string `yaml:"temp_dir"   env:"HANAYOMI_TEMP_DIR"`
	BatchSize int    `yaml:"batch_size" env:"HANAYOMI_BATCH_SIZE" env-default:"100"`
	Validate  bool   `yaml:"validate"   env:"HANAYOMI_VALIDATE"`
}

// defaults returns a Config with the boolean settings that default to true.
// cleanenv fills env-default only into zero-valued fields, so a YAML false
// would be overwritten by a "true" tag default.
func defaults() Config {
	return Config{
		Database: DatabaseConfig{AutoMigrate: true},
		Import:   ImportConfig{Validate: true},
	}
}

// ScratchRoot returns the directory archives are extracted under.
func (c ImportConfig) ScratchRoot() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return filepath.Join(c.Workdir, "temp")
}
