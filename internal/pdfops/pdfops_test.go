package pdfops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/batchprint/internal/pdftest"
)

type stubDoc struct{ n int }

func (d stubDoc) NumPage() int { return d.n }
func (stubDoc) Close() error { return nil }

type stubOpener struct {
	doc  Doc
	err  error
	seen []string
}

func (o *stubOpener) Open(path string) (Doc, error) {
	o.seen = append(o.seen, path)
	return o.doc, o.err
}

func TestPageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ten.pdf")
	pdftest.WritePages(t, path, 10)

	fb := &stubOpener{doc: stubDoc{n: 99}}
	p := &Pages{fallback: fb}
	n, err := p.PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Empty(t, fb.seen, "fallback must not run for readable files")
}

func TestPageCountFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 garbage"), 0o644))

	fb := &stubOpener{doc: stubDoc{n: 3}}
	n, err := (&Pages{fallback: fb}).PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{path}, fb.seen)

	_, err = (&Pages{fallback: &stubOpener{err: errors.New("mupdf says no")}}).PageCount(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mupdf says no")
	assert.NotContains(t, err.Error(), "\n", "status lines are single-line")

	_, err = (&Pages{}).PageCount(path)
	assert.Error(t, err)
}

func TestSubset(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ten.pdf")
	out := filepath.Join(dir, "subset.pdf")
	pdftest.WritePages(t, src, 10)

	p := New()
	require.NoError(t, p.Subset(src, out, []int{0, 1, 2, 4}))

	n, err := p.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	srcWidths := pdftest.PageWidths(t, src)
	assert.Equal(t, []int{srcWidths[0], srcWidths[1], srcWidths[2], srcWidths[4]}, pdftest.PageWidths(t, out))

	// source untouched
	n, err = p.PageCount(src)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestSubsetEmptySelection(t *testing.T) {
	dir := t.TempDir()
	err := New().Subset(filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf"), nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.NoFileExists(t, filepath.Join(dir, "b.pdf"))
}

func TestPageCountRepairedToNothingIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj << /Type /Pages /Kids [] /Count 0 >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n"), 0o644))

	n, err := (&Pages{fallback: &stubOpener{doc: stubDoc{n: 0}}}).PageCount(path)
	assert.ErrorIs(t, err, ErrNoPages)
	assert.Zero(t, n)
	assert.NotContains(t, err.Error(), "\n")

	// the real MuPDF either refuses the file or finds no pages
	_, err = New().PageCount(path)
	assert.Error(t, err)
}
