package models

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means the persisted store could not be reached; the
	// current cycle is abandoned and retried on the next one.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSourceUnavailable means an external provider could not be fetched or parsed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInsufficientHistory means too few observations exist to forecast.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// SourceError attributes a provider failure to its source. It matches
// ErrSourceUnavailable under errors.Is.
type SourceError struct {
	Source string
	Err    error
}

func NewSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}
