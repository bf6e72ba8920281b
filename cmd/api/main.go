package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"vidshare-api/internal/utils"

	"github.com/urfave/cli/v3"
)

func main() {
	logger := utils.NewLogger(nil, os.Getenv("LOG_LEVEL"))
	runner := &Runner{logger: logger}

	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	app := &cli.Command{
		Name:   "vidshare-api",
		Usage:  "Video sharing REST API",
		Flags:  []cli.Flag{configFlag},
		Before: runner.Load,
		Action: runner.Serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: runner.Serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create tables and indexes",
				Action: runner.Migrate,
			},
			{
				Name:  "reconcile",
				Usage: "Settle stale media upload and delete intents once",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "stale-after",
						Usage: "Only settle intents older than this (defaults to reconcile.stale_after)",
					},
				},
				Action: runner.Reconcile,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatal("application error", "err", err)
	}
}
