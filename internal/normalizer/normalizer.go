// Package normalizer turns any supported input into a PDF ready to be
// subset and dispatched.
package normalizer

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/batchprint/internal/converter"
	"github.com/local/batchprint/internal/filetype"
	"github.com/local/batchprint/internal/imagerender"
	"github.com/local/batchprint/internal/metrics"
)

// Artifact is the normalized PDF for one input. Temp is true when the job
// created the file and must delete it.
type Artifact struct {
	Path string
	Temp bool
}

// Converter turns office documents into PDFs
type Converter interface {
	ConvertToPDF(ctx context.Context, job converter.Job) converter.Result
}

// TempAllocator hands out and reclaims job-owned scratch paths
type TempAllocator interface {
	NewPath(suffix string) (string, error)
	Release(path string)
}

// Options wires a Normalizer
type Options struct {
	Converter Converter
	Temps     TempAllocator
	Image     imagerender.Options
	// ConvertTimeout overrides the converter's own timeout when set
	ConvertTimeout time.Duration
}

// Normalizer dispatches on file kind. One instance serves one job.
type Normalizer struct {
	conv    Converter
	temps   TempAllocator
	image   imagerender.Options
	timeout time.Duration
}

func New(opts Options) *Normalizer {
	return &Normalizer{
		conv:    opts.Converter,
		temps:   opts.Temps,
		image:   opts.Image,
		timeout: opts.ConvertTimeout,
	}
}

// Normalize produces a PDF for path. PDFs pass through untouched and are
// never marked Temp.
func (n *Normalizer) Normalize(ctx context.Context, path string, kind filetype.Kind) (Artifact, error) {
	switch {
	case kind == filetype.KindPDF:
		return Artifact{Path: path, Temp: false}, nil
	case kind.IsOffice():
		return n.convertOffice(ctx, path, kind)
	case kind == filetype.KindImage:
		return n.paginate(ctx, path)
	default:
		ext := filepath.Ext(path)
		if ext == "" {
			ext = "no extension"
		}
		return Artifact{}, &SkippedError{File: path, Reason: "unsupported file type (" + ext + ")"}
	}
}

func (n *Normalizer) convertOffice(ctx context.Context, path string, kind filetype.Kind) (Artifact, error) {
	if n.conv == nil {
		return Artifact{}, &ConversionFailedError{File: path, Format: kind.String(), Reason: "no office converter configured"}
	}
	out, err := n.temps.NewPath(".pdf")
	if err != nil {
		return Artifact{}, &ConversionFailedError{File: path, Format: kind.String(), Reason: "allocate temp file", Err: err}
	}

	res := n.conv.ConvertToPDF(ctx, converter.Job{
		InputPath:  path,
		OutputPath: out,
		Extension:  strings.ToLower(filepath.Ext(path)),
		Timeout:    n.timeout,
	})
	metrics.ObserveConversion(kind.String(), res.Success, res.Duration)
	if !res.Success {
		n.temps.Release(out)
		if res.IsProtected {
			return Artifact{}, &ConversionFailedError{File: path, Format: kind.String(), Reason: "document is password protected", Err: ErrPasswordProtected}
		}
		return Artifact{}, &ConversionFailedError{File: path, Format: kind.String(), Reason: res.Error}
	}
	return Artifact{Path: res.OutputPath, Temp: true}, nil
}

func (n *Normalizer) paginate(ctx context.Context, path string) (Artifact, error) {
	out, err := n.temps.NewPath(".pdf")
	if err != nil {
		return Artifact{}, &ConversionFailedError{File: path, Format: filetype.KindImage.String(), Reason: "allocate temp file", Err: err}
	}

	start := time.Now()
	err = imagerender.PaginateFile(ctx, path, out, n.image)
	metrics.ObserveConversion(filetype.KindImage.String(), err == nil, time.Since(start))
	if err != nil {
		n.temps.Release(out)
		log.Debug().Err(err).Str("file", path).Msg("image pagination failed")
		return Artifact{}, &ConversionFailedError{File: path, Format: filetype.KindImage.String(), Reason: err.Error(), Err: err}
	}
	return Artifact{Path: out, Temp: true}, nil
}
