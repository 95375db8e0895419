package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/doccover/backend-go/internal/cache"
	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/internal/drive"
	"github.com/andresuchdata/doccover/backend-go/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runCommand(cfg *config.Config) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Planning export to read (.xlsx or .csv)",
		},
		&cli.StringFlag{
			Name:  "drive-file-id",
			Usage: "Google Drive file ID to download and read instead of --input",
		},
		&cli.StringFlag{
			Name:  "download-dir",
			Usage: "Directory for Drive downloads",
			Value: cfg.App.UploadDir,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Summary workbook path (default <data dir>/<input>_DOC_summary.xlsx)",
		},
		&cli.BoolFlag{
			Name:  "upload",
			Usage: "Publish the summary workbook to object storage",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the result as JSON",
		},
		&cli.BoolFlag{
			Name:  "labels",
			Usage: "Print how each category label was classified",
		},
	}

	return &cli.Command{
		Name:  "run",
		Usage: "Compute the DOC summary of one planning export",
		Flags: append(flags, coverageFlags()...),
		Action: func(c *cli.Context) error {
			ctx := c.Context

			opts, err := optionsFromFlags(c, cfg)
			if err != nil {
				return err
			}

			input := c.String("input")
			if fileID := c.String("drive-file-id"); fileID != "" {
				src, err := newDriveService(ctx, cfg)
				if err != nil {
					return err
				}
				input, err = drive.NewDownloader(src).DownloadWorkbook(ctx, fileID, c.String("download-dir"))
				if err != nil {
					return err
				}
			}
			if input == "" {
				return fmt.Errorf("one of --input or --drive-file-id is required")
			}

			content, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", input, err)
			}

			var svcOpts []service.Option
			if c.Bool("upload") {
				store, err := newObjectStore(ctx, cfg)
				if err != nil {
					return err
				}
				svcOpts = append(svcOpts, service.WithStorage(store, cfg.Storage.Prefix))
			}
			svc := service.NewCoverageService(cfg.CoverageOptions(), cache.NewNoopResultCache(), svcOpts...)

			out, err := svc.Export(ctx, service.AnalyzeInput{
				FileName: filepath.Base(input),
				Content:  content,
				Options:  opts,
			})
			if err != nil {
				return err
			}

			output := c.String("output")
			if output == "" {
				output = defaultSummaryPath(cfg.App.DataDir, input)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(output, out.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			log.Info().
				Str("input", input).
				Str("output", output).
				Str("object_key", out.ObjectKey).
				Int("months", len(out.Result.Summary)).
				Msg("DOC summary written")

			w := c.App.Writer
			if c.Bool("json") {
				return printJSON(w, out.Result)
			}
			printSummary(w, out.Result)
			if c.Bool("labels") {
				fmt.Fprintln(w)
				printLabels(w, out.Result.Labels)
			}
			return nil
		},
	}
}
