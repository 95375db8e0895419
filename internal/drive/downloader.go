package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// workbookExtensions are the binary file kinds the calculator can read.
var workbookExtensions = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".csv":  {},
}

// Downloader wraps a FileSource to download planning exports.
type Downloader struct {
	source FileSource
}

// NewDownloader creates a new Downloader.
func NewDownloader(s FileSource) *Downloader {
	return &Downloader{source: s}
}

// DownloadWorkbooks downloads all .xlsx, .xlsm and .csv files of a folder into
// DownloadDir and returns the local paths. Native Google Sheets documents are
// exported as .xlsx. Other files are skipped.
func (d *Downloader) DownloadWorkbooks(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !isWorkbook(f) {
			log.Debug().Str("file", f.Name).Str("mime_type", f.MimeType).Msg("skipping non-workbook drive file")
			continue
		}

		localPath, err := d.download(ctx, f, opts.DownloadDir)
		if err != nil {
			return nil, err
		}
		localPaths = append(localPaths, localPath)
	}

	log.Info().
		Str("folder_id", opts.FolderID).
		Int("downloaded", len(localPaths)).
		Int("listed", len(files)).
		Msg("drive download completed")

	return localPaths, nil
}

// DownloadWorkbook downloads a single file by ID into dir.
func (d *Downloader) DownloadWorkbook(ctx context.Context, fileID, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	f, err := d.source.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	if !isWorkbook(f) {
		return "", fmt.Errorf("drive file %s (%s) is not a workbook", f.Name, f.MimeType)
	}
	return d.download(ctx, f, dir)
}

func (d *Downloader) download(ctx context.Context, f *File, dir string) (string, error) {
	localPath := filepath.Join(dir, localName(f))
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}

	var fetch func(context.Context, string, io.Writer) error = d.source.DownloadFile
	if f.IsSpreadsheet() {
		fetch = d.source.ExportSpreadsheet
	}

	if err := fetch(ctx, f.ID, out); err != nil {
		out.Close()
		_ = os.Remove(localPath)
		return "", fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return localPath, nil
}

func isWorkbook(f *File) bool {
	if f.IsSpreadsheet() {
		return true
	}
	_, ok := workbookExtensions[strings.ToLower(filepath.Ext(f.Name))]
	return ok
}

// localName is the file name used on disk. Drive names may contain path
// separators; only the base is kept.
func localName(f *File) string {
	name := filepath.Base(strings.ReplaceAll(f.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = f.ID
	}
	if f.IsSpreadsheet() && !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	return name
}
