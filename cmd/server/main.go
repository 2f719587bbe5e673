package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mtg9ny/recipe-backend/internal/catalog"
	"github.com/mtg9ny/recipe-backend/internal/config"
	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/logging"
	"github.com/mtg9ny/recipe-backend/internal/server"
	"github.com/mtg9ny/recipe-backend/internal/storage"
	"github.com/mtg9ny/recipe-backend/internal/storage/inmemory"
	"github.com/mtg9ny/recipe-backend/internal/storage/mongo"
	"github.com/mtg9ny/recipe-backend/internal/storage/postgres"
	"github.com/mtg9ny/recipe-backend/internal/views"
)

const name = "recipe-server"

// overridden during build with ldflags
var version = "dev"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Serve the recipe catalog",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars("CATALOG_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: fmt.Sprintf("storage backend (%s, %s or %s)", config.StorageInMemory, config.StorageMongo, config.StoragePostgres),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "listen port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "fill the store with demo records at startup",
			},
		},
		Action: run,
	}
}

// loadConfig layers explicitly set flags over the file and CATALOG_* values.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("storage") {
		cfg.Storage = cmd.String("storage")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("seed") {
		cfg.Seed = cmd.Bool("seed")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.Storage {
	case config.StorageMongo:
		return mongo.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	case config.StoragePostgres:
		verbose := strings.EqualFold(cfg.LogLevel, "debug")
		return postgres.New(ctx, cfg.Postgres.DSN, verbose)
	default:
		return inmemory.NewBackend(), nil
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logging.SetDefaultStructuredLogger(name, version, cfg.LogLevel)

	slog.Info("starting server",
		"version", version,
		"storage", cfg.Storage,
		"address", cfg.Addr(),
		"readTimeout", cfg.ReadTimeout,
		"writeTimeout", cfg.WriteTimeout,
		"shutdownTimeout", cfg.ShutdownTimeout,
	)

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}

	srv, err := build(ctx, cfg, backend)
	if err != nil {
		_ = backend.Close(ctx)
		return err
	}
	return srv.Run(ctx)
}

// build opens every collection and assembles the server.
func build(ctx context.Context, cfg *config.Config, backend storage.Backend) (*server.Server, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	kinds := []domain.Kind{domain.RecipeKind, domain.PostKind}
	handlers := make([]*catalog.Handler, 0, len(kinds))
	stores := make(map[string]storage.Storage, len(kinds))
	for _, kind := range kinds {
		store, err := backend.Open(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s collection: %w", kind.Collection, err)
		}
		stores[kind.Collection] = store
		handlers = append(handlers, catalog.New(kind, store, renderer))
	}

	if cfg.Seed {
		if err := seed(ctx, stores); err != nil {
			return nil, err
		}
	}

	return server.New(cfg, catalog.NewRouter(renderer, handlers...), renderer, backend), nil
}
