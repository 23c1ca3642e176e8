package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/batchprint/internal/filetype"
	"github.com/local/batchprint/internal/imagerender"
	"github.com/local/batchprint/internal/metrics"
	"github.com/local/batchprint/internal/normalizer"
	"github.com/local/batchprint/internal/pagerange"
	"github.com/local/batchprint/internal/sink"
	"github.com/local/batchprint/internal/tempfiles"
)

// PDFOps counts and subsets PDFs
type PDFOps interface {
	PageCount(path string) (int, error)
	Subset(in, out string, selection []int) error
}

// Detector sniffs file content; used only to warn about misnamed files
type Detector interface {
	Detect(path string) (*filetype.FileTypeInfo, error)
}

type Dependencies struct {
	Converter normalizer.Converter
	PDF       PDFOps
	Sink      sink.Sink
	Status    StatusPublisher
	Detector  Detector
	// TempRoot holds the per-job scratch directory; empty means os.TempDir()
	TempRoot string
	// ConvertTimeout bounds each office conversion; zero keeps the converter's default
	ConvertTimeout time.Duration
}

type Orchestrator struct {
	deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
	if deps.Status == nil {
		deps.Status = LogPublisher{}
	}
	return &Orchestrator{deps: deps}
}

// Run processes every item in order and always runs to the end of the list.
// Per-item problems end up in the report; only failure to set up the job's
// scratch space is returned as an error.
func (o *Orchestrator) Run(ctx context.Context, job *Job) (*Report, error) {
	if o.deps.Sink == nil || o.deps.PDF == nil {
		return nil, errors.New("orchestrator is missing a sink or pdf backend")
	}
	start := time.Now()

	temps, err := tempfiles.NewTracker(o.deps.TempRoot, job.ID)
	if err != nil {
		return nil, err
	}

	norm := normalizer.New(normalizer.Options{
		Converter:      o.deps.Converter,
		Temps:          temps,
		ConvertTimeout: o.deps.ConvertTimeout,
		Image: imagerender.Options{
			AutoRotate: job.Options.AutoRotate,
			AutoScale:  job.Options.AutoScale,
		},
	})

	log.Info().
		Str("job_id", job.ID).
		Int("files", len(job.Items)).
		Str("sink", o.deps.Sink.Name()).
		Str("pages", job.Options.PageSpec).
		Msg("batch started")

	for _, it := range job.Items {
		// Cancellation is honoured between files
		if ctx.Err() != nil {
			o.finish(ctx, job, it, StateSkipped, reasonCancelled, time.Now())
			continue
		}
		o.process(ctx, job, it, temps, norm)
	}

	if err := temps.Close(); err != nil {
		log.Warn().Err(err).Str("dir", temps.Dir()).Msg("failed to remove job temp dir")
	}

	report := newReport(job, start)
	report.TempCreated = len(temps.Created())
	report.TempRemoved = len(temps.Removed())
	metrics.AddTempFiles(report.TempCreated, report.TempRemoved)

	log.Info().
		Str("job_id", job.ID).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("duration", report.Duration()).
		Msg("batch finished")
	return report, nil
}

// process moves one item to a terminal state. Every temporary it created is
// released before it returns.
func (o *Orchestrator) process(ctx context.Context, job *Job, it *Item, temps *tempfiles.Tracker, norm *normalizer.Normalizer) {
	start := time.Now()
	var owned []string
	defer func() {
		for _, p := range owned {
			temps.Release(p)
		}
	}()

	fail := func(err error) {
		state, msg := classify(ctx, err)
		o.finish(ctx, job, it, state, msg, start)
	}
	// A collaborator crashing on one file must not take the batch down
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("job_id", job.ID).
				Str("file", it.InputPath).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("item processing panicked")
			fail(fmt.Errorf("internal error: %v", r))
		}
	}()

	if it.Kind == filetype.KindUnsupported {
		fail(&normalizer.SkippedError{File: it.InputPath, Reason: "unsupported file type"})
		return
	}
	if _, err := os.Stat(it.InputPath); err != nil {
		fail(fmt.Errorf("input not readable: %w", err))
		return
	}
	o.warnOnMismatch(it)

	o.transition(ctx, job, it, StateNormalizing)
	art, err := norm.Normalize(ctx, it.InputPath, it.Kind)
	if err != nil {
		fail(err)
		return
	}
	if art.Temp {
		owned = append(owned, art.Path)
	}

	count, err := o.deps.PDF.PageCount(art.Path)
	if err != nil {
		fail(fmt.Errorf("page count: %w", err))
		return
	}
	if count <= 0 {
		fail(errors.New("page count: document has no readable pages"))
		return
	}
	it.SourcePages = count

	selection, err := pagerange.Parse(job.Options.PageSpec, count)
	if err != nil {
		fail(err)
		return
	}
	if len(selection) == 0 {
		o.finish(ctx, job, it, StateSkipped, reasonNoPages, start)
		return
	}
	it.SelectedPages = len(selection)

	pdfPath := art.Path
	if pagerange.IsSubset(selection, count) {
		o.transition(ctx, job, it, StateSubsetting)
		out, err := temps.NewPath(".pdf")
		if err != nil {
			fail(err)
			return
		}
		owned = append(owned, out)
		if err := o.deps.PDF.Subset(art.Path, out, selection); err != nil {
			fail(err)
			return
		}
		// The pre-subset artifact is no longer needed; the user's own PDF is
		// never tracked, so Release leaves it alone
		temps.Release(art.Path)
		pdfPath = out
	}

	o.transition(ctx, job, it, StateDispatching)
	dest, err := o.deps.Sink.Dispatch(ctx, sink.Source{PDFPath: pdfPath, InputPath: it.InputPath})
	if err != nil {
		fail(&DispatchFailedError{File: it.InputPath, Sink: o.deps.Sink.Name(), Reason: err.Error()})
		return
	}
	it.Destination = dest
	metrics.AddPages(o.deps.Sink.Name(), len(selection))

	o.finish(ctx, job, it, StateSucceeded, "", start)
}

func (o *Orchestrator) warnOnMismatch(it *Item) {
	if o.deps.Detector == nil {
		return
	}
	// The detector logs the details; a failed sniff is not fatal
	if _, err := o.deps.Detector.Detect(it.InputPath); err != nil {
		log.Debug().Err(err).Str("file", it.InputPath).Msg("content sniffing failed")
	}
}

func (o *Orchestrator) transition(ctx context.Context, job *Job, it *Item, state State) {
	it.State = state
	o.publish(ctx, job, it)
}

func (o *Orchestrator) finish(ctx context.Context, job *Job, it *Item, state State, msg string, start time.Time) {
	it.State = state
	it.Message = msg
	it.Duration = time.Since(start)
	metrics.ObserveItem(it.Kind.String(), string(state), it.Duration)
	o.publish(ctx, job, it)
}

func (o *Orchestrator) publish(ctx context.Context, job *Job, it *Item) {
	u := Update{
		JobID:       job.ID,
		Index:       it.Index,
		Total:       len(job.Items),
		File:        it.InputPath,
		State:       it.State,
		Message:     it.Message,
		Destination: it.Destination,
		At:          time.Now(),
	}
	// Status sinks must not stop the batch, and a cancelled ctx should still
	// let the final states through
	if err := o.deps.Status.Publish(context.WithoutCancel(ctx), u); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Str("file", filepath.Base(it.InputPath)).Msg("failed to publish item status")
	}
}
