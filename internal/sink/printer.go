package sink

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/local/batchprint/internal/spooler"
)

// Spooler submits print jobs
type Spooler interface {
	Submit(ctx context.Context, printer, pdfPath, title string, opts spooler.Options) (string, error)
}

// Printer sends every document to one named printer
type Printer struct {
	spool   Spooler
	printer string
	opts    spooler.Options
}

func NewPrinter(spool Spooler, printer string, opts spooler.Options) *Printer {
	return &Printer{spool: spool, printer: printer, opts: opts}
}

func (p *Printer) Name() string { return "printer" }

// Dispatch submits the PDF titled with the input's base name
func (p *Printer) Dispatch(ctx context.Context, src Source) (string, error) {
	jobID, err := p.spool.Submit(ctx, p.printer, src.PDFPath, filepath.Base(src.InputPath), p.opts)
	if err != nil {
		return "", err
	}
	if jobID == "" {
		return p.printer, nil
	}
	return fmt.Sprintf("%s (%s)", p.printer, jobID), nil
}
