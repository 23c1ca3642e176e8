package imagerender

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// PreviewQuality is the JPEG quality used for page previews
const PreviewQuality = 85

// RenderPreview renders a PDF page as JPEG image (in-memory).
// page is 1-based.
func RenderPreview(pdfPath string, page, dpi int, gray bool) ([]byte, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page, doc.NumPage())
	}
	if dpi <= 0 {
		dpi = 72
	}

	// go-fitz uses 0-based indexing
	img, err := doc.ImageDPI(page-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}

	var final image.Image = img
	if gray {
		g := image.NewGray(img.Bounds())
		draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
		final = g
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, final, &jpeg.Options{Quality: PreviewQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	log.Debug().
		Int("page", page).
		Int("dpi", dpi).
		Bool("gray", gray).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("jpeg_size", buf.Len()).
		Msg("rendered preview")

	return buf.Bytes(), nil
}
