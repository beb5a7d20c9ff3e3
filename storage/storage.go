// Package storage publishes reconstructed documents to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DocxContentType is the MIME type of a WordprocessingML package.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}

// ObjectKey builds "<prefix>/<runID>/<file name>", dropping empty parts.
func ObjectKey(prefix, runID, filename string) string {
	var parts []string
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	if runID != "" {
		parts = append(parts, runID)
	}
	return path.Join(append(parts, filepath.Base(filename))...)
}

// UploadFile uploads the file at filename as a DOCX object.
func UploadFile(ctx context.Context, store ObjectStorage, bucket, key, filename string) (*UploadOutput, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}
	return store.Upload(ctx, UploadInput{
		Bucket:      bucket,
		Key:         key,
		Body:        f,
		ContentType: DocxContentType,
		Size:        info.Size(),
	})
}
