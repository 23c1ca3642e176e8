package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single conversion when neither the job nor the
// converter sets one.
const DefaultTimeout = 180 * time.Second

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	// Run executes name and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Options configures the LibreOffice converter
type Options struct {
	// Binary is the soffice/libreoffice executable, looked up on PATH
	Binary string
	// Timeout applies to jobs that do not set their own
	Timeout time.Duration
	// ProfileRoot holds the throwaway user profiles; defaults to os.TempDir()
	ProfileRoot string
}

// LibreOffice converts office documents to PDF by running LibreOffice headless
type LibreOffice struct {
	binary      string
	timeout     time.Duration
	profileRoot string
	exec        executor
}

// Job represents a document conversion job
type Job struct {
	InputPath  string
	OutputPath string
	Extension  string
	Timeout    time.Duration
}

// Result represents the result of a conversion operation
type Result struct {
	Success     bool
	OutputPath  string
	Error       string
	Duration    time.Duration
	IsProtected bool
}

// NewLibreOffice creates a converter with the given options
func NewLibreOffice(opts Options) *LibreOffice {
	return newLibreOffice(opts, osExecutor{})
}

func newLibreOffice(opts Options, ex executor) *LibreOffice {
	if opts.Binary == "" {
		opts.Binary = "soffice"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ProfileRoot == "" {
		opts.ProfileRoot = os.TempDir()
	}
	return &LibreOffice{
		binary:      opts.Binary,
		timeout:     opts.Timeout,
		profileRoot: opts.ProfileRoot,
		exec:        ex,
	}
}

// Binary returns the configured executable name
func (l *LibreOffice) Binary() string { return l.binary }

// CheckInstallation verifies LibreOffice is available and returns its version line
func (l *LibreOffice) CheckInstallation(ctx context.Context) (string, error) {
	if _, err := l.exec.LookPath(l.binary); err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", l.binary, err)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	output, err := l.exec.Run(ctx, l.binary, "--version")
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", l.binary, err)
	}
	version := strings.TrimSpace(string(output))
	log.Debug().Str("version", version).Msg("LibreOffice found")
	return version, nil
}

// ConvertToPDF converts a document to PDF format. The produced file ends up
// at job.OutputPath; failures are reported in the Result, never as a panic.
func (l *LibreOffice) ConvertToPDF(ctx context.Context, job Job) Result {
	startTime := time.Now()
	fail := func(format string, args ...any) Result {
		return Result{
			Success:  false,
			Error:    fmt.Sprintf(format, args...),
			Duration: time.Since(startTime),
		}
	}

	log.Info().Str("input", job.InputPath).Str("output", job.OutputPath).Msg("starting conversion")

	// Check if input file exists and is readable
	if err := validateInput(job.InputPath); err != nil {
		return fail("input validation failed: %v", err)
	}

	// Unique profile directory so parallel or crashed instances never share a lock
	profileDir := filepath.Join(l.profileRoot, "libreoffice_profile_"+uuid.NewString())
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fail("failed to create profile directory: %v", err)
	}
	defer os.RemoveAll(profileDir)

	// LibreOffice names its output after the input, so convert into a private
	// directory and move the result into place afterwards
	outDir, err := os.MkdirTemp(filepath.Dir(job.OutputPath), "convert-")
	if err != nil {
		return fail("failed to create output directory: %v", err)
	}
	defer os.RemoveAll(outDir)

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = l.timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(profileDir),
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		job.InputPath,
	}
	log.Debug().Str("cmd", l.binary+" "+strings.Join(args, " ")).Msg("LibreOffice command")

	output, err := l.exec.Run(runCtx, l.binary, args...)
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fail("conversion timeout after %v", timeout)
	}
	if ctx.Err() != nil {
		return fail("conversion cancelled: %v", ctx.Err())
	}
	if isPasswordMessage(output) {
		r := fail("document is password protected")
		r.IsProtected = true
		return r
	}
	if err != nil {
		return fail("conversion failed: %v: %s", err, strings.TrimSpace(string(output)))
	}

	// Check if output file was created
	produced := expectedOutputPath(job.InputPath, outDir)
	if _, err := os.Stat(produced); err != nil {
		return fail("output file not created: %s", filepath.Base(produced))
	}
	if err := os.Rename(produced, job.OutputPath); err != nil {
		return fail("failed to move output into place: %v", err)
	}

	log.Info().Str("output", job.OutputPath).Dur("duration", time.Since(startTime)).Msg("conversion successful")

	return Result{
		Success:    true,
		OutputPath: job.OutputPath,
		Duration:   time.Since(startTime),
	}
}

// validateInput checks if the input file is readable
func validateInput(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("file not found: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}

	if info.Size() == 0 {
		return fmt.Errorf("file is empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("file not readable: %w", err)
	}
	file.Close()

	return nil
}

func isPasswordMessage(output []byte) bool {
	s := strings.ToLower(string(output))
	return strings.Contains(s, "password") ||
		strings.Contains(s, "encrypted")
}

// expectedOutputPath is where LibreOffice writes the PDF for inputPath
func expectedOutputPath(inputPath, outputDir string) string {
	baseName := filepath.Base(inputPath)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return filepath.Join(outputDir, nameWithoutExt+".pdf")
}
