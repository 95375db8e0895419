package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/internal/drive"
	"github.com/andresuchdata/doccover/backend-go/internal/pipeline"
	"github.com/andresuchdata/doccover/backend-go/internal/pipeline/doc_coverage"
	"github.com/andresuchdata/doccover/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

func batchCommand(cfg *config.Config) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "input-dir",
			Usage: "Directory of planning exports",
		},
		&cli.StringFlag{
			Name:    "drive-folder-id",
			Usage:   "Google Drive folder to download exports from instead of --input-dir",
			EnvVars: []string{"DRIVE_FOLDER_ID"},
		},
		&cli.StringFlag{
			Name:  "download-dir",
			Usage: "Directory for Drive downloads",
			Value: cfg.App.UploadDir,
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory for per-file summaries and the consolidated CSV",
			Value: filepath.Join(cfg.App.DataDir, doc_coverage.Name),
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of files processed concurrently",
			Value: runtime.NumCPU(),
		},
		&cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "Stop at the first failing file",
		},
		&cli.BoolFlag{
			Name:  "upload",
			Usage: "Publish the consolidated CSV to object storage",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Hide the progress bar",
		},
	}

	return &cli.Command{
		Name:  "batch",
		Usage: "Compute DOC summaries for every export in a directory",
		Flags: append(flags, coverageFlags()...),
		Action: func(c *cli.Context) error {
			ctx := c.Context

			opts, err := optionsFromFlags(c, cfg)
			if err != nil {
				return err
			}

			files, err := batchInputs(c, cfg)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				log.Warn().Msg("no planning exports found")
				return nil
			}

			outputDir := c.String("output-dir")
			pcfg := pipeline.DefaultPipelineConfig(doc_coverage.Name)
			pcfg.OutputDir = outputDir
			pcfg.WorkerCount = c.Int("workers")
			pcfg.FailFast = c.Bool("fail-fast")

			p := doc_coverage.NewFilePipeline(doc_coverage.Config{
				OutputDir: outputDir,
				Options:   opts,
			})
			worker := pipeline.NewWorker(p, pcfg)

			if !c.Bool("quiet") {
				bar := newProgressBar(len(files))
				worker.OnFileDone(func(pipeline.FileJob) { _ = bar.Add(1) })
				defer func() {
					_ = bar.Finish()
					fmt.Fprintln(c.App.ErrWriter)
				}()
			}

			if c.Bool("upload") {
				store, err := newObjectStore(ctx, cfg)
				if err != nil {
					return err
				}
				worker.OnFlush(uploadCSV(store, cfg.Storage.Prefix))
			}

			report, err := worker.ProcessBatch(ctx, files)
			if report != nil {
				printBatchReport(c.App.Writer, report)
			}
			if errors.Is(err, pipeline.ErrBatchFailed) {
				return fmt.Errorf("%w: see the report above", err)
			}
			return err
		},
	}
}

func batchInputs(c *cli.Context, cfg *config.Config) ([]string, error) {
	if folderID := c.String("drive-folder-id"); folderID != "" && !c.IsSet("input-dir") {
		src, err := newDriveService(c.Context, cfg)
		if err != nil {
			return nil, err
		}
		return drive.NewDownloader(src).DownloadWorkbooks(c.Context, drive.DownloadOptions{
			FolderID:    folderID,
			DownloadDir: c.String("download-dir"),
		})
	}

	dir := c.String("input-dir")
	if dir == "" {
		return nil, fmt.Errorf("one of --input-dir or --drive-folder-id is required")
	}
	return pipeline.DiscoverFiles(dir, doc_coverage.InputExtensions...)
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("computing DOC"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// uploadCSV publishes each flushed consolidated CSV under the storage prefix.
func uploadCSV(store storage.ObjectStorage, prefix string) func(ctx context.Context, csvPath string) error {
	return func(ctx context.Context, csvPath string) error {
		data, err := os.ReadFile(csvPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", csvPath, err)
		}
		key := storage.ObjectKey(prefix, filepath.Base(csvPath), time.Now())
		if err := store.UploadObject(ctx, key, data, "text/csv"); err != nil {
			return err
		}
		log.Info().Str("key", key).Msg("consolidated CSV uploaded")
		return nil
	}
}
