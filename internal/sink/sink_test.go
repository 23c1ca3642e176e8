package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/batchprint/internal/spooler"
	"github.com/local/batchprint/internal/storage"
)

type submission struct {
	printer, pdf, title string
	opts                spooler.Options
}

type fakeSpooler struct {
	subs []submission
	err  error
}

func (f *fakeSpooler) Submit(_ context.Context, printer, pdf, title string, opts spooler.Options) (string, error) {
	f.subs = append(f.subs, submission{printer, pdf, title, opts})
	if f.err != nil {
		return "", f.err
	}
	return "Office-7", nil
}

func TestPrinterDispatch(t *testing.T) {
	spool := &fakeSpooler{}
	p := NewPrinter(spool, "Office", spooler.Options{Duplex: true, Color: false})

	dest, err := p.Dispatch(context.Background(), Source{PDFPath: "/tmp/x/1.pdf", InputPath: "/docs/Q3 report.docx"})
	require.NoError(t, err)
	assert.Equal(t, "Office (Office-7)", dest)
	require.Len(t, spool.subs, 1)
	assert.Equal(t, submission{"Office", "/tmp/x/1.pdf", "Q3 report.docx", spooler.Options{Duplex: true}}, spool.subs[0])

	spool.err = errors.New("printer offline")
	_, err = p.Dispatch(context.Background(), Source{PDFPath: "a", InputPath: "b"})
	assert.EqualError(t, err, "printer offline")
}

func TestDirectoryDispatch(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "exports")
	tmpPDF := filepath.Join(in, "artifact-123.pdf")
	require.NoError(t, os.WriteFile(tmpPDF, []byte("%PDF converted"), 0o600))

	d := NewDirectory(out)
	dest, err := d.Dispatch(context.Background(), Source{PDFPath: tmpPDF, InputPath: "/docs/Budget.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "Budget.pdf"), dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF converted", string(data))

	// second dispatch with the same base name overwrites
	require.NoError(t, os.WriteFile(tmpPDF, []byte("%PDF newer"), 0o600))
	_, err = d.Dispatch(context.Background(), Source{PDFPath: tmpPDF, InputPath: "/other/Budget.docx"})
	require.NoError(t, err)
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF newer", string(data))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no stray temp files in the export dir")
}

func TestDirectoryDispatchSameFile(t *testing.T) {
	out := t.TempDir()
	pdf := filepath.Join(out, "report.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF original"), 0o644))

	dest, err := NewDirectory(out).Dispatch(context.Background(), Source{PDFPath: pdf, InputPath: pdf})
	require.NoError(t, err)
	assert.Equal(t, pdf, dest)
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF original", string(data))
}

func TestDirectoryDispatchOverInputWarns(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	var logs bytes.Buffer
	log.Logger = zerolog.New(&logs)

	dir := t.TempDir()
	input := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF all pages"), 0o644))
	subset := filepath.Join(t.TempDir(), "subset.pdf")
	require.NoError(t, os.WriteFile(subset, []byte("%PDF page 2"), 0o644))

	dest, err := NewDirectory(dir).Dispatch(context.Background(), Source{PDFPath: subset, InputPath: input})
	require.NoError(t, err)
	assert.Equal(t, input, dest)

	data, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "%PDF page 2", string(data))
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "export replaces the input file")
}

func TestDirectoryDispatchMissingSource(t *testing.T) {
	_, err := NewDirectory(t.TempDir()).Dispatch(context.Background(), Source{PDFPath: "/nope.pdf", InputPath: "/nope.pdf"})
	assert.Error(t, err)
}

type fakeUploader struct {
	key, contentType string
	body             string
	meta             map[string]string
}

func (f *fakeUploader) Upload(_ context.Context, key string, body io.Reader, contentType string, meta map[string]string) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.key, f.contentType, f.body, f.meta = key, contentType, string(b), meta
	return "s3://bucket/" + key, nil
}

func TestS3Dispatch(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "tmp.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF s3"), 0o600))

	up := &fakeUploader{}
	s := NewS3(up, storage.Location{Bucket: "bucket", Prefix: "exports"})
	dest, err := s.Dispatch(context.Background(), Source{PDFPath: pdf, InputPath: "/docs/slides.pptx"})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/exports/slides.pdf", dest)
	assert.Equal(t, "exports/slides.pdf", up.key)
	assert.Equal(t, "application/pdf", up.contentType)
	assert.Equal(t, "%PDF s3", up.body)
	assert.Equal(t, "slides.pptx", up.meta["name"])
	assert.Equal(t, "s3", s.Name())
}
