package storage

import (
	"context"
	"path"
	"strings"
	"time"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage captures the minimal S3-compatible operations used to publish
// and retrieve summary workbooks.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// ObjectKey joins prefix and name into a slash-separated key, e.g.
// "doc/20250107T101500Z_plan_DOC_summary.xlsx".
func ObjectKey(prefix, name string, at time.Time) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	stamped := at.UTC().Format("20060102T150405Z") + "_" + name
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return stamped
	}
	return prefix + "/" + stamped
}
