package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/cache"
	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/internal/demo"
	"github.com/andresuchdata/doccover/backend-go/internal/service"
	"github.com/andresuchdata/doccover/backend-go/internal/sheet"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func demoCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Generate a synthetic planning export and compute its DOC summary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Where to write the demo export",
				Value:   filepath.Join(cfg.App.DataDir, "demo_planning.xlsx"),
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "First month (YYYY-MM)",
			},
			&cli.IntFlag{
				Name:  "months",
				Usage: "Number of month columns",
				Value: 12,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed",
				Value: demo.DefaultSeed,
			},
		},
		Action: func(c *cli.Context) error {
			opts := demo.Options{Months: c.Int("months"), Seed: c.Int64("seed")}
			if s := c.String("start"); s != "" {
				start, err := time.Parse("2006-01", s)
				if err != nil {
					return fmt.Errorf("invalid --start %q, want YYYY-MM: %w", s, err)
				}
				opts.Start = start
			}

			table := demo.Table(opts)

			var buf bytes.Buffer
			if err := sheet.WriteTable(&buf, "Planning", table); err != nil {
				return err
			}
			output := c.String("output")
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			log.Info().Str("path", output).Int("rows", len(table.Rows)).Msg("demo export written")

			svc := service.NewCoverageService(cfg.CoverageOptions(), cache.NewNoopResultCache())
			res, err := svc.AnalyzeTable(c.Context, table, svc.Defaults())
			if err != nil {
				return err
			}
			printSummary(c.App.Writer, res)
			return nil
		},
	}
}
