// Package batch runs a list of documents through normalization, page
// selection and dispatch, one file at a time.
package batch

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/local/batchprint/internal/filetype"
	"github.com/local/batchprint/internal/pagerange"
)

// State is an item's position in the pipeline
type State string

const (
	StatePending     State = "pending"
	StateNormalizing State = "normalizing"
	StateSubsetting  State = "subsetting"
	StateDispatching State = "dispatching"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
	StateSkipped     State = "skipped"
)

// Terminal reports whether no further transitions follow
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateSkipped
}

const (
	reasonCancelled = "cancelled"
	reasonNoPages   = "page range selects no pages"
)

// Item is one input file and what became of it
type Item struct {
	Index         int           `json:"index"`
	InputPath     string        `json:"input_path"`
	Kind          filetype.Kind `json:"-"`
	State         State         `json:"state"`
	Message       string        `json:"message,omitempty"`
	SourcePages   int           `json:"source_pages,omitempty"`
	SelectedPages int           `json:"selected_pages,omitempty"`
	Destination   string        `json:"destination,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// DestinationKind tells which sink a job uses
type DestinationKind string

const (
	DestPrinter   DestinationKind = "printer"
	DestDirectory DestinationKind = "directory"
	DestS3        DestinationKind = "s3"
)

// Options are the job-wide settings chosen by the user
type Options struct {
	Printer   string
	OutputDir string
	S3URL     string

	Duplex     bool
	Color      bool
	PageSpec   string
	AutoRotate bool
	AutoScale  bool
}

// DefaultOptions has color and both image switches on
func DefaultOptions() Options {
	return Options{Color: true, AutoRotate: true, AutoScale: true}
}

// Destination returns the single configured destination
func (o Options) Destination() (DestinationKind, error) {
	var kinds []DestinationKind
	if o.Printer != "" {
		kinds = append(kinds, DestPrinter)
	}
	if o.OutputDir != "" {
		kinds = append(kinds, DestDirectory)
	}
	if o.S3URL != "" {
		kinds = append(kinds, DestS3)
	}
	switch len(kinds) {
	case 0:
		return "", ErrNoDestination
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("%w: %v", ErrMultipleDestinations, kinds)
	}
}

// Validate checks everything that can be checked before touching a file
func (o Options) Validate() error {
	if _, err := o.Destination(); err != nil {
		return err
	}
	return pagerange.Validate(o.PageSpec)
}

// Job is an ordered batch of items sharing one set of options
type Job struct {
	ID      string
	Items   []*Item
	Options Options
	Created time.Time
}

// NewJob validates opts and builds pending items in the given order
func NewJob(paths []string, opts Options) (*Job, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	job := &Job{
		ID:      uuid.NewString(),
		Items:   make([]*Item, len(paths)),
		Options: opts,
		Created: time.Now(),
	}
	for i, p := range paths {
		job.Items[i] = &Item{
			Index:     i,
			InputPath: p,
			Kind:      filetype.KindOf(p),
			State:     StatePending,
		}
	}
	return job, nil
}

// Report is the outcome of a run
type Report struct {
	JobID     string    `json:"job_id"`
	Items     []Item    `json:"items"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	// TempCreated and TempRemoved count job-owned scratch files
	TempCreated int `json:"temp_created"`
	TempRemoved int `json:"temp_removed"`
}

// HasFailures reports whether any item failed
func (r *Report) HasFailures() bool { return r.Failed > 0 }

// Duration is the wall time of the run
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

func newReport(job *Job, start time.Time) *Report {
	r := &Report{JobID: job.ID, Start: start, End: time.Now()}
	for _, it := range job.Items {
		r.Items = append(r.Items, *it)
		switch it.State {
		case StateSucceeded:
			r.Succeeded++
		case StateFailed:
			r.Failed++
		case StateSkipped:
			r.Skipped++
		}
	}
	return r
}
