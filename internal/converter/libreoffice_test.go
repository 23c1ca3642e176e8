package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records invocations and runs a configurable handler.
type fakeExecutor struct {
	bins  map[string]bool
	calls [][]string
	run   func(ctx context.Context, name string, args []string) ([]byte, error)
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.run != nil {
		return f.run(ctx, name, args)
	}
	return nil, nil
}

// outdirOf returns the value following --outdir.
func outdirOf(args []string) string {
	for i, a := range args {
		if a == "--outdir" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("office bytes"), 0o644))
	return p
}

func TestConvertToPDFSuccess(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "report.docx")
	output := filepath.Join(dir, "out", "artifact.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(output), 0o755))

	ex := &fakeExecutor{run: func(_ context.Context, _ string, args []string) ([]byte, error) {
		out := filepath.Join(outdirOf(args), "report.pdf")
		return []byte("convert ok"), os.WriteFile(out, []byte("%PDF-1.4"), 0o644)
	}}
	lo := newLibreOffice(Options{ProfileRoot: dir}, ex)

	res := lo.ConvertToPDF(context.Background(), Job{InputPath: input, OutputPath: output})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, output, res.OutputPath)
	assert.FileExists(t, output)

	require.Len(t, ex.calls, 1)
	call := ex.calls[0]
	assert.Equal(t, "soffice", call[0])
	assert.Contains(t, call, "--headless")
	assert.Contains(t, call, "--convert-to")
	assert.Equal(t, input, call[len(call)-1])

	// profile and staging directories are gone
	entries, err := os.ReadDir(filepath.Dir(output))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConvertToPDFFailures(t *testing.T) {
	tests := []struct {
		name      string
		run       func(ctx context.Context, name string, args []string) ([]byte, error)
		wantErr   string
		protected bool
	}{
		{
			name: "non-zero exit",
			run: func(context.Context, string, []string) ([]byte, error) {
				return []byte("Error: source file could not be loaded"), errors.New("exit status 1")
			},
			wantErr: "conversion failed",
		},
		{
			name: "exit zero without output",
			run: func(context.Context, string, []string) ([]byte, error) {
				return nil, nil
			},
			wantErr: "output file not created",
		},
		{
			name: "password protected",
			run: func(context.Context, string, []string) ([]byte, error) {
				return []byte("Error: password required"), errors.New("exit status 1")
			},
			wantErr:   "password protected",
			protected: true,
		},
		{
			name: "timeout",
			run: func(ctx context.Context, _ string, _ []string) ([]byte, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			wantErr: "timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "deck.pptx")
			lo := newLibreOffice(Options{ProfileRoot: dir, Timeout: 50 * time.Millisecond}, &fakeExecutor{run: tt.run})

			res := lo.ConvertToPDF(context.Background(), Job{InputPath: input, OutputPath: filepath.Join(dir, "x.pdf")})
			assert.False(t, res.Success)
			assert.Contains(t, res.Error, tt.wantErr)
			assert.Equal(t, tt.protected, res.IsProtected)
			assert.NoFileExists(t, filepath.Join(dir, "x.pdf"))
		})
	}
}

func TestConvertToPDFRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.xlsx")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	ex := &fakeExecutor{}
	lo := newLibreOffice(Options{ProfileRoot: dir}, ex)

	res := lo.ConvertToPDF(context.Background(), Job{InputPath: empty, OutputPath: filepath.Join(dir, "x.pdf")})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "file is empty")

	res = lo.ConvertToPDF(context.Background(), Job{InputPath: filepath.Join(dir, "missing.doc"), OutputPath: filepath.Join(dir, "x.pdf")})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "file not found")

	assert.Empty(t, ex.calls)
}

func TestCheckInstallation(t *testing.T) {
	ex := &fakeExecutor{
		bins: map[string]bool{"soffice": true},
		run: func(context.Context, string, []string) ([]byte, error) {
			return []byte("LibreOffice 7.6.4.1\n"), nil
		},
	}
	version, err := newLibreOffice(Options{}, ex).CheckInstallation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "LibreOffice 7.6.4.1", version)

	_, err = newLibreOffice(Options{Binary: "libreoffice"}, ex).CheckInstallation(context.Background())
	assert.Error(t, err)
}
