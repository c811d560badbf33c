package sonar

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying pipeline failures. Use errors.Is to branch on
// them; concrete failures wrap a sentinel together with the underlying cause.
var (
	// ErrMissingSource marks a FileRef fragment whose path does not exist.
	ErrMissingSource = errors.New("missing source file")

	// ErrDirectory marks a destination directory that cannot be created.
	ErrDirectory = errors.New("destination directory unavailable")

	// ErrTempWrite marks a temporary source file that cannot be written.
	ErrTempWrite = errors.New("temporary source write failed")

	// ErrCompile marks a backend compilation failure.
	ErrCompile = errors.New("compilation failed")

	// ErrNoBackend is reported by the fallback adapter when no compiler
	// backend has been configured. Treated as a compile failure.
	ErrNoBackend = errors.New("no compiler backend configured")

	// ErrNoArtifact signals that a request produced no fresh artifact and
	// no previously compiled output exists to fall back to.
	ErrNoArtifact = errors.New("no artifact available")
)

// PipelineError wraps a failure in one stage of the compile pipeline with
// the sentinel classifying it and the underlying cause.
type PipelineError struct {
	Kind error  // one of the sentinel errors above
	Err  error  // underlying cause, may be nil
	Msg  string // stage-specific detail
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *PipelineError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// pipelineErrorf builds a PipelineError with formatted detail.
func pipelineErrorf(kind, cause error, format string, args ...any) error {
	return &PipelineError{Kind: kind, Err: cause, Msg: fmt.Sprintf(format, args...)}
}

// ValidationError represents one or more fragment validation failures
// collected over a whole request (validate-all, fail closed).
type ValidationError struct {
	Errors []error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", ve.Errors[0])
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "validation failed with %d errors:\n", len(ve.Errors))
	for i, err := range ve.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors for use with errors.Is and errors.As.
func (ve *ValidationError) Unwrap() []error {
	return ve.Errors
}

// newValidationError creates a ValidationError from a slice of errors.
// Returns nil if the slice is empty.
func newValidationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
