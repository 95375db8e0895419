package main

import (
	"fmt"

	"github.com/andresuchdata/doccover/backend-go/internal/cache"
	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func cacheCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the result cache",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Drop every cached DOC result",
				Action: func(c *cli.Context) error {
					if !cfg.Cache.Enabled {
						log.Warn().Msg("result cache is disabled (CACHE_ENABLED=false), nothing to clear")
						return nil
					}

					resultCache, err := cache.NewResultCache(c.Context, cfg.Cache)
					if err != nil {
						return fmt.Errorf("failed to connect to result cache: %w", err)
					}
					defer resultCache.Close()

					if err := resultCache.InvalidateAll(c.Context); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "result cache cleared")
					return nil
				},
			},
		},
	}
}
