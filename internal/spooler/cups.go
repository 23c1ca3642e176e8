// Package spooler submits PDFs to printers through the CUPS command-line
// client and answers printer discovery questions.
package spooler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoPrinters is returned when CUPS knows no destinations.
var ErrNoPrinters = errors.New("no printers found")

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Options are the per-job print settings
type Options struct {
	Duplex bool
	Color  bool
}

// Attributes renders the CUPS job options for o
func (o Options) Attributes() map[string]string {
	mode := "Gray"
	if o.Color {
		mode = "Color"
	}
	attrs := map[string]string{
		"ColorModel":  mode,
		"FFColorMode": mode,
	}
	if o.Duplex {
		attrs["sides"] = "two-sided-long-edge"
	}
	return attrs
}

// Config names the CUPS binaries
type Config struct {
	LPBinary     string
	LPStatBinary string
	Timeout      time.Duration
}

// CUPS talks to the local CUPS scheduler via lp and lpstat
type CUPS struct {
	lp      string
	lpstat  string
	timeout time.Duration
	exec    executor
}

func New(cfg Config) *CUPS {
	return newCUPS(cfg, osExecutor{})
}

func newCUPS(cfg Config, ex executor) *CUPS {
	if cfg.LPBinary == "" {
		cfg.LPBinary = "lp"
	}
	if cfg.LPStatBinary == "" {
		cfg.LPStatBinary = "lpstat"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CUPS{lp: cfg.LPBinary, lpstat: cfg.LPStatBinary, timeout: cfg.Timeout, exec: ex}
}

var requestID = regexp.MustCompile(`request id is (\S+)`)

// Submit queues pdfPath on printer and returns the CUPS job id
func (c *CUPS) Submit(ctx context.Context, printer, pdfPath, title string, opts Options) (string, error) {
	if printer == "" {
		return "", errors.New("printer name is empty")
	}
	args := []string{"-d", printer}
	if title != "" {
		args = append(args, "-t", title)
	}
	attrs := opts.Attributes()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-o", k+"="+attrs[k])
	}
	args = append(args, "--", pdfPath)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := c.exec.Output(ctx, c.lp, args...)
	if err != nil {
		return "", fmt.Errorf("submit to %s: %w", printer, err)
	}

	jobID := ""
	if m := requestID.FindSubmatch(out); m != nil {
		jobID = string(m[1])
	}
	log.Info().Str("printer", printer).Str("title", title).Str("cups_job", jobID).Bool("duplex", opts.Duplex).Bool("color", opts.Color).Msg("print job submitted")
	return jobID, nil
}

// Printers lists the configured destinations in lpstat order
func (c *CUPS) Printers(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := c.exec.Output(ctx, c.lpstat, "-e")
	if err != nil {
		return nil, fmt.Errorf("list printers: %w", err)
	}
	var printers []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			printers = append(printers, name)
		}
	}
	if len(printers) == 0 {
		return nil, ErrNoPrinters
	}
	return printers, nil
}

// Default returns the system default destination, or "" when none is set
func (c *CUPS) Default(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := c.exec.Output(ctx, c.lpstat, "-d")
	if err != nil {
		return "", fmt.Errorf("default printer: %w", err)
	}
	// "system default destination: Office_Laser" or "no system default destination"
	s := strings.TrimSpace(string(out))
	if _, name, ok := strings.Cut(s, ":"); ok {
		return strings.TrimSpace(name), nil
	}
	return "", nil
}

// Available reports whether lp is installed
func (c *CUPS) Available() error {
	if _, err := c.exec.LookPath(c.lp); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", c.lp, err)
	}
	return nil
}

// Preferred picks the remembered printer if it still exists, then the
// system default, then the first listed printer.
func Preferred(printers []string, remembered, systemDefault string) string {
	for _, want := range []string{remembered, systemDefault} {
		if want == "" {
			continue
		}
		for _, p := range printers {
			if p == want {
				return p
			}
		}
	}
	if len(printers) > 0 {
		return printers[0]
	}
	return ""
}
