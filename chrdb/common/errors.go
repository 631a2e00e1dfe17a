package common

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the build pipeline. Every fatal failure wraps one of
// these so callers can classify it with errors.Is.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrStore             = errors.New("store failure")
	ErrPackagingFailure  = errors.New("packaging failure")
)

// Pipeline stage names used in StageError and log fields.
const (
	StageFetch    = "fetch"
	StageParse    = "parse"
	StageBlocks   = "blocks"
	StageAges     = "ages"
	StageEntities = "entities"
	StageStore    = "store"
	StagePackage  = "package"
)

// StageError carries the stage, source file and (when known) line number of a
// failure together with the underlying error.
type StageError struct {
	Stage string
	File  string
	Line  int
	Err   error
}

func (e *StageError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s: %s:%d: %v", e.Stage, e.File, e.Line, e.Err)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.File, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Malformed wraps a decode failure as ErrMalformedRecord, keeping the cause in
// the message.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...any) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

// WithStage attaches stage and file context to err. A nil err stays nil. If err
// already carries a StageError only its missing file name is filled in.
func WithStage(stage, file string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		if se.File == "" {
			se.File = file
		}
		return err
	}
	return &StageError{Stage: stage, File: file, Err: err}
}
