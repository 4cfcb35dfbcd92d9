package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/session"
	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// EnvConfigPath overrides the default config.toml location.
const EnvConfigPath = "CINEHINT_CONFIG"

func main() {
	logger := shared.NewLogger(nil)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	config.ApplyEnv(os.Getenv)

	if err := config.Validate(); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}
	if level, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, level)
	} else {
		logger.Warn("unknown log level, keeping info", "level", config.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, closeStore := openStore(ctx, config, logger)
	defer closeStore()

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Store:      store,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "cinehint",
		Usage:    "Answer a few questions and get one movie to watch tonight",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		closeStore()
		logger.Fatalf("application error: %v", err)
	}
}

// openStore selects the token store backend. A database that cannot be opened falls back to memory.
func openStore(ctx context.Context, config *shared.Config, logger *log.Logger) (session.Store, func()) {
	if config.Session.Backend == "memory" {
		return session.NewMemoryStore(""), func() {}
	}

	db, err := shared.OpenDatabase(ctx, config.Database)
	if err != nil {
		logger.Warn("session database unavailable, the session will not survive this run", "path", config.Database.Path, "error", err)
		return session.NewMemoryStore(""), func() {}
	}
	return session.NewSQLiteStore(db), func() { db.Close() }
}
