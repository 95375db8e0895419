// backend-go/cmd/doc/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logger.SetOutput(os.Stderr, cfg.App.LogFormat)
	logger.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(cfg).RunContext(ctx, os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("doc failed")
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:  "doc",
		Usage: "Compute days of coverage from monthly supply-planning exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			if level := c.String("log-level"); level != "" {
				logger.SetLevel(level)
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(cfg),
			batchCommand(cfg),
			demoCommand(cfg),
			fetchCommand(cfg),
			cacheCommand(cfg),
		},
	}
}
