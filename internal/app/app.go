package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youyoumu/hanayomi/internal/adapter/postgres"
	"github.com/youyoumu/hanayomi/internal/adapter/postgres/dictionary"
	"github.com/youyoumu/hanayomi/internal/app/importer"
	"github.com/youyoumu/hanayomi/internal/config"
)

var _ importer.Store = (*dictionary.Repo)(nil)

// App holds the components a command needs. Close releases the pool.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Pool         *pgxpool.Pool
	Dictionaries *dictionary.Repo
	Importer     *importer.Importer
}

// Open connects to the database, applies migrations when
// database.auto_migrate is set, and wires the store and the importer.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...importer.Option) (*App, error) {
	logger.Debug("opening application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	repo := dictionary.New(pool, postgres.NewTxManager(pool), cfg.Import.BatchSize)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		Dictionaries: repo,
		Importer:     importer.New(cfg.Import, repo, logger, opts...),
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}
