package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/andresuchdata/doccover/backend-go/internal/drive"
	"github.com/andresuchdata/doccover/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

// coverageFlags are the per-run calculator overrides shared by commands.
func coverageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "site",
			Usage: "Designated-site marker, matched case-insensitively against the location column",
		},
		&cli.Float64Flag{
			Name:  "multiplier",
			Usage: "Unit multiplier applied to consensus demand before clipping",
		},
		&cli.StringFlag{
			Name:  "location-column",
			Usage: "Header of the location column",
		},
		&cli.StringFlag{
			Name:  "category-column",
			Usage: "Header of the key-figure column",
		},
		&cli.BoolFlag{
			Name:  "assume-site-demand",
			Usage: "Attribute every consensus row to the designated site",
		},
	}
}

// optionsFromFlags starts from configuration and applies the flags that were set.
func optionsFromFlags(c *cli.Context, cfg *config.Config) (coverage.Options, error) {
	opts := cfg.CoverageOptions()

	if c.IsSet("site") {
		opts.SiteMarker = c.String("site")
	}
	if c.IsSet("multiplier") {
		m := c.Float64("multiplier")
		if m <= 0 {
			return opts, fmt.Errorf("--multiplier must be positive, got %v", m)
		}
		opts.UnitMultiplier = m
	}
	if c.IsSet("location-column") {
		opts.LocationColumn = c.String("location-column")
	}
	if c.IsSet("category-column") {
		opts.CategoryColumn = c.String("category-column")
	}
	if c.IsSet("assume-site-demand") {
		opts.AssumeSiteDemand = c.Bool("assume-site-demand")
	}

	return opts.WithDefaults(), nil
}

func newDriveService(ctx context.Context, cfg *config.Config) (*drive.Service, error) {
	if strings.TrimSpace(cfg.Drive.CredentialsJSON) == "" {
		return nil, fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS_JSON env is required")
	}
	svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return svc, nil
}

func newObjectStore(ctx context.Context, cfg *config.Config) (*storage.MinioClient, error) {
	store, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// defaultSummaryPath is "<data dir>/<stem>_DOC_summary.xlsx".
func defaultSummaryPath(dataDir, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dataDir, stem+"_DOC_summary.xlsx")
}
