package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTopic     = errors.New("unknown topic")
	ErrUnknownSubtopic  = errors.New("unknown subtopic")
	ErrUnknownIndicator = errors.New("unknown indicator")
	ErrNotImplemented   = errors.New("topic has no datasets yet")
	ErrMissingColumn    = errors.New("missing column")
	ErrBadPeriod        = errors.New("TIME_PERIOD is not a year")
	ErrSubtopicFailed   = errors.New("subtopic failed to load")
)

// LoadError reports a dataset file that could not be read. It only affects
// its own subtopic.
type LoadError struct {
	Subtopic string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s (%s): %v", e.Subtopic, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
