package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/local/batchprint/internal/storage"
)

// Uploader stores an object and returns its URL
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, metadata map[string]string) (string, error)
}

// S3 uploads each document to <prefix>/<basename>.pdf
type S3 struct {
	up  Uploader
	loc storage.Location
}

func NewS3(up Uploader, loc storage.Location) *S3 {
	return &S3{up: up, loc: loc}
}

func (s *S3) Name() string { return "s3" }

func (s *S3) Dispatch(ctx context.Context, src Source) (string, error) {
	f, err := os.Open(src.PDFPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src.PDFPath, err)
	}
	defer f.Close()

	key := s.loc.Key(exportName(src.InputPath))
	return s.up.Upload(ctx, key, f, "application/pdf", map[string]string{
		"name": filepath.Base(src.InputPath),
	})
}
