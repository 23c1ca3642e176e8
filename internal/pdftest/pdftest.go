// Package pdftest builds small real PDFs and images for tests.
package pdftest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageHeight is the pixel height of every fixture page image.
const PageHeight = 400

// WritePDF writes a PDF with one page per entry of widths. Each page is made
// from a widths[i]×PageHeight image, so pages can be told apart by width.
func WritePDF(tb testing.TB, path string, widths ...int) {
	tb.Helper()
	readers := make([]io.Reader, 0, len(widths))
	for _, w := range widths {
		readers = append(readers, bytes.NewReader(PNG(tb, w, PageHeight)))
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, imp, nil); err != nil {
		tb.Fatalf("build pdf fixture: %v", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		tb.Fatalf("write pdf fixture: %v", err)
	}
}

// WritePages writes an n-page PDF whose page i is 100+20*i wide.
func WritePages(tb testing.TB, path string, n int) {
	tb.Helper()
	widths := make([]int, n)
	for i := range widths {
		widths[i] = 100 + 20*i
	}
	WritePDF(tb, path, widths...)
}

// PageWidths returns the rounded width of every page of the PDF at path.
func PageWidths(tb testing.TB, path string) []int {
	tb.Helper()
	dims, err := api.PageDimsFile(path)
	if err != nil {
		tb.Fatalf("read page dims: %v", err)
	}
	out := make([]int, len(dims))
	for i, d := range dims {
		out[i] = int(math.Round(d.Width))
	}
	return out
}

// PNG encodes a w×h gray image.
func PNG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.SetGray(0, 0, color.Gray{Y: 0})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encode png fixture: %v", err)
	}
	return buf.Bytes()
}

// WritePNG writes a w×h PNG to path.
func WritePNG(tb testing.TB, path string, w, h int) {
	tb.Helper()
	if err := os.WriteFile(path, PNG(tb, w, h), 0o644); err != nil {
		tb.Fatalf("write png fixture: %v", err)
	}
}

// BMPHeader returns a 54-byte 24-bit BMP that declares a w×h image but
// carries no pixel data.
func BMPHeader(w, h uint32) []byte {
	b := make([]byte, 54)
	copy(b, "BM")
	binary.LittleEndian.PutUint32(b[2:], 54)
	binary.LittleEndian.PutUint32(b[10:], 54)
	binary.LittleEndian.PutUint32(b[14:], 40)
	binary.LittleEndian.PutUint32(b[18:], w)
	binary.LittleEndian.PutUint32(b[22:], h)
	binary.LittleEndian.PutUint16(b[26:], 1)
	binary.LittleEndian.PutUint16(b[28:], 24)
	return b
}
