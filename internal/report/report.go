// Package report renders batch results and health checks for the terminal.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/local/batchprint/internal/batch"
	"github.com/local/batchprint/internal/statuscheck"
)

const (
	colorSuccess = lipgloss.Color("#39ff14")
	colorError   = lipgloss.Color("#ff0055")
	colorWarning = lipgloss.Color("#ff6600")
	colorMuted   = lipgloss.Color("#8b949e")
	colorAccent  = lipgloss.Color("#00d4ff")
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	muted   lipgloss.Style
}

// newStyles binds the palette to w so color is dropped when w is not a terminal
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorAccent),
		header:  r.NewStyle().Bold(true).Underline(true),
		ok:      r.NewStyle().Foreground(colorSuccess),
		failed:  r.NewStyle().Foreground(colorError).Bold(true),
		skipped: r.NewStyle().Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

func (s styles) state(st batch.State) lipgloss.Style {
	switch st {
	case batch.StateSucceeded:
		return s.ok
	case batch.StateFailed:
		return s.failed
	case batch.StateSkipped:
		return s.skipped
	}
	return s.muted
}

// Render writes one row per item followed by the totals line
func Render(w io.Writer, r *batch.Report) error {
	s := newStyles(w)
	rows := [][]string{{"#", "File", "State", "Pages", "Detail"}}
	for _, it := range r.Items {
		detail := it.Destination
		if it.Message != "" {
			detail = it.Message
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", it.Index+1),
			filepath.Base(it.InputPath),
			string(it.State),
			pages(it),
			detail,
		})
	}

	var b strings.Builder
	b.WriteString(s.title.Render("Batch "+r.JobID) + "\n")
	widths := columnWidths(rows)
	for i, row := range rows {
		cells := make([]string, len(row))
		for c, cell := range row {
			cells[c] = pad(cell, widths[c], c == len(row)-1)
		}
		switch {
		case i == 0:
			for c := range cells {
				cells[c] = s.header.Render(cells[c])
			}
		default:
			cells[2] = s.state(r.Items[i-1].State).Render(cells[2])
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " ") + "\n")
	}

	totals := fmt.Sprintf("%s  %s  %s",
		s.ok.Render(fmt.Sprintf("%d succeeded", r.Succeeded)),
		s.failed.Render(fmt.Sprintf("%d failed", r.Failed)),
		s.skipped.Render(fmt.Sprintf("%d skipped", r.Skipped)))
	b.WriteString(totals + s.muted.Render(fmt.Sprintf("  in %s, temp files %d/%d removed",
		r.Duration().Round(time.Millisecond), r.TempRemoved, r.TempCreated)) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderStatus writes the health check summary
func RenderStatus(w io.Writer, sum statuscheck.Summary) error {
	s := newStyles(w)
	var b strings.Builder
	for _, e := range sum.Entries() {
		mark, style := "ok", s.ok
		if !e.Status.OK {
			mark, style = "FAIL", s.failed
			if e.Status.Optional {
				mark, style = "off", s.skipped
			}
		}
		fmt.Fprintf(&b, "%s %s %s\n", style.Render(pad(mark, 4, false)), pad(e.Name, 11, false), s.muted.Render(e.Status.Message))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pages(it batch.Item) string {
	switch {
	case it.SourcePages == 0:
		return "-"
	case it.SelectedPages == 0 || it.SelectedPages == it.SourcePages:
		return fmt.Sprintf("%d", it.SourcePages)
	}
	return fmt.Sprintf("%d/%d", it.SelectedPages, it.SourcePages)
}

func columnWidths(rows [][]string) []int {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for c, cell := range row {
			if w := lipgloss.Width(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
