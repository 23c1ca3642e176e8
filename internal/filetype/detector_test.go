package filetype

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"a.pdf":            KindPDF,
		"A.PDF":            KindPDF,
		"report.doc":       KindWordProcessor,
		"report.DOCX":      KindWordProcessor,
		"deck.ppt":         KindPresentation,
		"deck.pptx":        KindPresentation,
		"sheet.xls":        KindSpreadsheet,
		"sheet.xlsx":       KindSpreadsheet,
		"photo.png":        KindImage,
		"photo.jpg":        KindImage,
		"photo.JPEG":       KindImage,
		"scan.bmp":         KindImage,
		"notes.txt":        KindUnsupported,
		"archive.tar.gz":   KindUnsupported,
		"no_extension":     KindUnsupported,
		"/dir.pdf/file.md": KindUnsupported,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, KindOf(path))
			assert.Equal(t, want != KindUnsupported, IsSupported(path))
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{
		".bmp", ".doc", ".docx", ".jpeg", ".jpg", ".pdf", ".png", ".ppt", ".pptx", ".xls", ".xlsx",
	}, SupportedExtensions())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "pdf", KindPDF.String())
	assert.Equal(t, "unsupported", Kind(42).String())
	assert.True(t, KindSpreadsheet.IsOffice())
	assert.False(t, KindImage.IsOffice())
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	d := New()

	pdfPath := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"), 0o644))
	info, err := d.Detect(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, KindPDF, info.Kind)
	assert.Equal(t, "application/pdf", info.MIMEType)
	assert.False(t, info.Mismatch)

	pngPath := filepath.Join(dir, "img.png")
	writePNG(t, pngPath)
	info, err = d.Detect(pngPath)
	require.NoError(t, err)
	assert.Equal(t, KindImage, info.Kind)
	assert.False(t, info.Mismatch)

	// PNG bytes behind a .pdf name keep the extension's kind but are flagged
	disguised := filepath.Join(dir, "disguised.pdf")
	writePNG(t, disguised)
	info, err = d.Detect(disguised)
	require.NoError(t, err)
	assert.Equal(t, KindPDF, info.Kind)
	assert.True(t, info.Mismatch)

	_, err = d.Detect(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}
