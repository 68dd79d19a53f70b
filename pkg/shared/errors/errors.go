package errors

import (
	"errors"
	"fmt"
)

// Parsing errors. They degrade a single record and never abort a run.
var (
	ErrMalformedOffset = errors.New("malformed forensic path offset")
	ErrUnparsableLine  = errors.New("unexpected number of tab-separated fields in feature line")
)

// Structural errors. They abort the current phase.
var (
	ErrEmptyIndex       = errors.New("no files discovered: byte run index is empty")
	ErrDuplicateSession = errors.New("a session with the same name already exists")
	ErrMissingArtifact  = errors.New("required upstream artifact is missing")
	ErrOutputExists     = errors.New("output file already exists")
)

// LineError reports a scanner-output line that could not be used.
type LineError struct {
	File   string
	Number int
	Line   string
	Err    error
}

// Error implements the error interface for LineError.
func (e *LineError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %v (line %q)", e.File, e.Number, e.Err, e.Line)
	}
	return fmt.Sprintf("line %d: %v (line %q)", e.Number, e.Err, e.Line)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// CopyError is a per-file export failure. It is recorded and never aborts an export.
type CopyError struct {
	Path string
	Op   string // "copy" or "carve"
	Err  error
}

// Error implements the error interface for CopyError.
func (e *CopyError) Error() string {
	return fmt.Sprintf("failed to %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// CommandError carries the process exit code of a failed command up to main.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err with the exit code that should be reported for it.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Err:         err,
	}
}
