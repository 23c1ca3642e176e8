// Package sink holds the destinations a normalized PDF can be dispatched to.
package sink

import (
	"context"
	"path/filepath"
	"strings"
)

// Source is one normalized document ready for dispatch
type Source struct {
	// PDFPath is the file to send; it may be the user's own PDF
	PDFPath string
	// InputPath is the original input, used for naming
	InputPath string
}

// Sink receives normalized PDFs
type Sink interface {
	// Name identifies the sink in logs and metrics ("printer", "directory", "s3")
	Name() string
	// Dispatch delivers src and returns where it went
	Dispatch(ctx context.Context, src Source) (string, error)
}

// exportName is "<input basename without extension>.pdf"
func exportName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
}
