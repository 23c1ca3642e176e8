// Package pdfops holds the PDF operations a batch needs: counting pages and
// cutting a document down to a page selection.
package pdfops

import (
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/local/batchprint/internal/pagerange"
)

var (
	// ErrEmptySelection is returned when asked to keep zero pages.
	ErrEmptySelection = errors.New("page selection is empty")
	// ErrNoPages is returned for a PDF that yields no pages at all.
	ErrNoPages = errors.New("document has no readable pages")
)

// Pages counts pages with pdfcpu first and MuPDF as fallback.
type Pages struct {
	fallback Opener
}

// New returns Pages backed by pdfcpu and go-fitz.
func New() *Pages {
	return &Pages{fallback: fitzOpener{}}
}

// PageCount returns the number of pages of the PDF at path. A document with
// no pages is an error: it means the file could not really be read.
func (p *Pages) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err == nil {
		if n <= 0 {
			return 0, ErrNoPages
		}
		return n, nil
	}
	if p.fallback == nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}

	log.Warn().Err(err).Str("file", path).Msg("pdfcpu could not read PDF, falling back to MuPDF")
	doc, ferr := p.fallback.Open(path)
	if ferr != nil {
		// one line, it ends up in the per-item status message
		return 0, fmt.Errorf("pdf page count failed: %w; mupdf: %w", err, ferr)
	}
	defer doc.Close()
	if n := doc.NumPage(); n > 0 {
		return n, nil
	}
	// MuPDF "repairs" some broken files into empty documents
	return 0, fmt.Errorf("pdf page count failed: %w; mupdf: %w", err, ErrNoPages)
}

// Subset writes the pages of in listed in selection (0-based, ascending) to out
func (p *Pages) Subset(in, out string, selection []int) error {
	if len(selection) == 0 {
		return ErrEmptySelection
	}
	pages := pagerange.Pages(selection)
	if err := api.TrimFile(in, out, pages, nil); err != nil {
		return fmt.Errorf("pdf subset failed: %w", err)
	}
	log.Debug().Str("input", in).Str("output", out).Strs("pages", pages).Msg("pdf subset written")
	return nil
}
