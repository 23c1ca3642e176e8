package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/batchprint/internal/batch"
	"github.com/local/batchprint/internal/statuscheck"
)

func TestRender(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &batch.Report{
		JobID: "job-1",
		Items: []batch.Item{
			{Index: 0, InputPath: "/docs/a.pdf", State: batch.StateSucceeded, SourcePages: 10, SelectedPages: 4, Destination: "/out/a.pdf"},
			{Index: 1, InputPath: "/docs/b.docx", State: batch.StateFailed, Message: "conversion failed"},
			{Index: 2, InputPath: "/docs/c.txt", State: batch.StateSkipped, Message: "unsupported file type"},
		},
		Succeeded: 1, Failed: 1, Skipped: 1,
		Start: start, End: start.Add(1500 * time.Millisecond),
		TempCreated: 2, TempRemoved: 2,
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	assert.Equal(t, "Batch job-1", lines[0])
	assert.Regexp(t, `^#\s+File\s+State\s+Pages\s+Detail$`, lines[1])
	assert.Regexp(t, `^1\s+a\.pdf\s+succeeded\s+4/10\s+/out/a\.pdf$`, lines[2])
	assert.Regexp(t, `^2\s+b\.docx\s+failed\s+-\s+conversion failed$`, lines[3])
	assert.Regexp(t, `^3\s+c\.txt\s+skipped\s+-\s+unsupported file type$`, lines[4])
	assert.Equal(t, "1 succeeded  1 failed  1 skipped  in 1.5s, temp files 2/2 removed", lines[5])

	// columns line up
	assert.Equal(t, strings.Index(lines[1], "State"), strings.Index(lines[2], "succeeded"))
	assert.Equal(t, strings.Index(lines[1], "State"), strings.Index(lines[3], "failed"))
}

func TestRenderStatus(t *testing.T) {
	sum := statuscheck.Summary{
		LibreOffice: statuscheck.Status{OK: true, Message: "LibreOffice 7.6"},
		Printing:    statuscheck.Status{OK: false, Optional: true, Message: "lp not found"},
		Redis:       statuscheck.Status{OK: false, Optional: true, Message: "not configured"},
		S3:          statuscheck.Status{OK: false, Message: "access denied"},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderStatus(&buf, sum))
	assert.Equal(t, strings.Join([]string{
		"ok   LibreOffice LibreOffice 7.6",
		"off  Printing    lp not found",
		"off  Redis       not configured",
		"FAIL S3          access denied",
	}, "\n")+"\n", buf.String())
}
