package normalizer

import (
	"errors"
	"fmt"
)

// ErrPasswordProtected marks an office document that needs a password to open
var ErrPasswordProtected = errors.New("password protected")

// ConversionFailedError reports that a document could not be turned into a PDF
type ConversionFailedError struct {
	File   string
	Format string
	Reason string
	Err    error
}

func (e *ConversionFailedError) Error() string {
	return fmt.Sprintf("conversion failed: %s (%s) - %s", e.File, e.Format, e.Reason)
}

func (e *ConversionFailedError) Unwrap() error { return e.Err }

// SkippedError marks a file that is left out of the batch on purpose.
// It is not a failure.
type SkippedError struct {
	File   string
	Reason string
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("skipped: %s - %s", e.File, e.Reason)
}
