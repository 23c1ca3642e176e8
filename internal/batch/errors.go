package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/local/batchprint/internal/normalizer"
)

var (
	ErrNoFiles              = errors.New("no files in batch")
	ErrNoDestination        = errors.New("no destination: set a printer, an output directory or an s3 url")
	ErrMultipleDestinations = errors.New("more than one destination set")
)

// DispatchFailedError reports that a sink rejected a document
type DispatchFailedError struct {
	File   string
	Sink   string
	Reason string
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("dispatch failed: %s via %s - %s", e.File, e.Sink, e.Reason)
}

// classify maps a per-item error to the terminal state it implies
func classify(ctx context.Context, err error) (State, string) {
	if err == nil {
		return StateSucceeded, ""
	}

	// Interrupted work is not the document's fault
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return StateSkipped, reasonCancelled
	}

	var skipped *normalizer.SkippedError
	if errors.As(err, &skipped) {
		return StateSkipped, skipped.Reason
	}

	var convErr *normalizer.ConversionFailedError
	if errors.Is(err, normalizer.ErrPasswordProtected) && errors.As(err, &convErr) {
		return StateFailed, fmt.Sprintf("password protected (%s): open it, remove the password and add it again", convErr.Format)
	}
	if errors.As(err, &convErr) {
		return StateFailed, fmt.Sprintf("conversion failed (%s): %s", convErr.Format, convErr.Reason)
	}

	var dispErr *DispatchFailedError
	if errors.As(err, &dispErr) {
		return StateFailed, dispErr.Reason
	}

	return StateFailed, oneLine(err.Error())
}

// oneLine keeps multi-part error text on the single status line
func oneLine(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", "; ")), " ")
}
