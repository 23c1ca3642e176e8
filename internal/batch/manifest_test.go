package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	content := `
files:
  - docs/a.pdf
  - /abs/b.docx
  - ""
output_dir: out
pages: "1-3,5"
duplex: true
color: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "docs/a.pdf"), "/abs/b.docx"}, m.Files)

	opts := DefaultOptions()
	m.Apply(&opts)
	assert.Equal(t, filepath.Join(dir, "out"), opts.OutputDir)
	assert.Equal(t, "1-3,5", opts.PageSpec)
	assert.True(t, opts.Duplex)
	assert.False(t, opts.Color)
	// unset switches keep their defaults
	assert.True(t, opts.AutoRotate)
	assert.True(t, opts.AutoScale)
}

func TestLoadManifestErrors(t *testing.T) {
	_, err := LoadManifest("")
	assert.Error(t, err)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("files: [unterminated"), 0o644))
	_, err = LoadManifest(bad)
	assert.Error(t, err)
}
