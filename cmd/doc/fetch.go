package main

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/internal/drive"
	"github.com/andresuchdata/doccover/backend-go/internal/sheet"
	"github.com/andresuchdata/doccover/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func fetchCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download planning exports from a Google Drive folder or the object storage bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "drive-folder-id",
				Usage:   "Drive folder ID",
				EnvVars: []string{"DRIVE_FOLDER_ID"},
				Value:   cfg.Drive.FolderID,
			},
			&cli.StringFlag{
				Name:  "folder-path",
				Usage: "Slash-separated folder path resolved from the Drive root, used when no folder ID is given",
			},
			&cli.BoolFlag{
				Name:  "from-storage",
				Usage: "Download from the S3-compatible bucket instead of Drive",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Object key prefix to list with --from-storage",
				Value: cfg.Storage.Prefix,
			},
			&cli.StringFlag{
				Name:  "download-dir",
				Usage: "Local directory for the downloads",
				Value: cfg.App.UploadDir,
			},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context

			var (
				paths []string
				err   error
			)
			if c.Bool("from-storage") {
				store, serr := newObjectStore(ctx, cfg)
				if serr != nil {
					return serr
				}
				paths, err = downloadFromStorage(ctx, store, c.String("prefix"), c.String("download-dir"))
			} else {
				paths, err = downloadFromDrive(c, cfg)
			}
			if err != nil {
				return err
			}

			for _, p := range paths {
				fmt.Fprintln(c.App.Writer, p)
			}
			return nil
		},
	}
}

func downloadFromDrive(c *cli.Context, cfg *config.Config) ([]string, error) {
	ctx := c.Context

	src, err := newDriveService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	folderID := c.String("drive-folder-id")
	if folderID == "" {
		folderPath := c.String("folder-path")
		if folderPath == "" {
			return nil, fmt.Errorf("one of --drive-folder-id or --folder-path is required")
		}
		if folderID, err = src.FindFolderByPath(ctx, folderPath); err != nil {
			return nil, err
		}
	}

	paths, err := drive.NewDownloader(src).DownloadWorkbooks(ctx, drive.DownloadOptions{
		FolderID:    folderID,
		DownloadDir: c.String("download-dir"),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("folder_id", folderID).Int("files", len(paths)).Msg("Drive fetch complete")
	return paths, nil
}

// downloadFromStorage copies every readable export under prefix into dir.
// Keys are flattened to their base name.
func downloadFromStorage(ctx context.Context, store storage.ObjectStorage, prefix, dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("download dir is required")
	}

	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, obj := range objects {
		name := path.Base(obj.Key)
		if _, err := sheet.DetectFormat(name); err != nil {
			log.Debug().Str("key", obj.Key).Msg("skipping non-workbook object")
			continue
		}

		dest := filepath.Join(dir, name)
		if err := store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return nil, err
		}
		paths = append(paths, dest)
	}

	log.Info().Str("prefix", prefix).Int("files", len(paths)).Int("listed", len(objects)).Msg("storage fetch complete")
	return paths, nil
}
