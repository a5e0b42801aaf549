// Package storage keeps uploaded file bodies in S3-compatible object storage.
// Bodies are streamed straight through; nothing is buffered on local disk.
package storage

import (
	"context"
	"io"
	"mime"
	"path"
	"path/filepath"
	"time"
)

// PutObjectOptions describe an upload. Size is the exact byte count, or -1 to
// let the backend chunk the stream.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	// OriginalName is kept as object metadata and offered back on download.
	OriginalName string
}

// ObjectInfo is what the backend reports after a successful upload.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage holds the bodies of uploaded CRM files.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a time-limited link that saves the object as filename.
	DownloadURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
}

// FileKey builds the object key for a tenant's file. Only the extension of
// originalName is kept.
func FileKey(tenantID, id, originalName string) string {
	return path.Join("files", tenantID, id+filepath.Ext(filepath.Base(originalName)))
}

// attachment renders a Content-Disposition value for filename.
func attachment(filename string) string {
	if filename == "" {
		return "attachment"
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
