package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/cli"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/config"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/database"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/logging"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return err
	}

	app := &cli.App{
		Config: cfg,
		Logger: logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat),
		OpenDB: func() (*gorm.DB, error) {
			return database.NewConnection(cfg.Database.DSN())
		},
		Out: os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
