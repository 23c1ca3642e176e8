package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Directory writes "<dir>/<basename>.pdf", overwriting what is there
type Directory struct {
	dir string
}

func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

func (d *Directory) Name() string { return "directory" }

// Dir returns the export directory
func (d *Directory) Dir() string { return d.dir }

func (d *Directory) Dispatch(ctx context.Context, src Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	dest := filepath.Join(d.dir, exportName(src.InputPath))

	// A pass-through PDF already sitting at its export path needs no copy
	if same(src.PDFPath, dest) {
		return dest, nil
	}
	if same(src.InputPath, dest) {
		// Exporting into the input's own folder replaces the original
		log.Warn().Str("file", dest).Msg("export replaces the input file")
	} else if _, err := os.Stat(dest); err == nil {
		log.Debug().Str("file", dest).Msg("overwriting existing export")
	}
	if err := copyFile(src.PDFPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func same(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// copyFile writes through a sibling temp file so a failed copy never leaves
// a truncated export behind
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".export-*.pdf")
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write export: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		log.Debug().Err(err).Str("file", tmp.Name()).Msg("chmod export")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("move export into place: %w", err)
	}
	return nil
}
