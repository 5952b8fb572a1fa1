// Package errors provides error wrapping with slog annotations so that the
// context gathered along the error path ends up in the structured logs.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
)

// AnnotatedError is an error with an annotation message, optional [slog.Attr]
// annotations, and the source location where it was created.
type AnnotatedError struct {
	message string
	cause   error
	attrs   []slog.Attr
	pc      uintptr
}

// Error implements the error interface.
func (e *AnnotatedError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
}

// Unwrap makes AnnotatedError compatible with [errors.Is] and [errors.As].
func (e *AnnotatedError) Unwrap() error {
	return e.cause
}

// source resolves the file:line where the error was created.
func (e *AnnotatedError) source() string {
	if e.pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{e.pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

// callerPC returns the program counter of the caller's caller.
func callerPC() uintptr {
	var pcs [1]uintptr
	// Skip runtime.Callers, callerPC, and the exported constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above.
	return pcs[0]
}

// NewSentinel creates an error suitable for package-level sentinel values.
func NewSentinel(message string) error {
	return &AnnotatedError{message: message, cause: nil, attrs: nil, pc: callerPC()}
}

// Wrap annotates err with a message and optional [slog.Attr] annotations.
func Wrap(err error, message string, attrs ...slog.Attr) error {
	return &AnnotatedError{message: message, cause: err, attrs: attrs, pc: callerPC()}
}

// New mirrors [errors.New] so that callers don't need two errors imports.
func New(text string) error {
	return errors.New(text)
}

// Is mirrors [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As mirrors [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target) //nolint:errorlint // this is the mirror itself.
}

// Unwrap mirrors [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join mirrors [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SlogError renders err into a [slog.Attr] including the annotations and the
// source location from the outermost [AnnotatedError] in the chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	args := []any{slog.String("message", err.Error())}

	var annotated *AnnotatedError
	if errors.As(err, &annotated) {
		if len(annotated.attrs) > 0 {
			annotationArgs := make([]any, 0, len(annotated.attrs))
			for _, attr := range annotated.attrs {
				annotationArgs = append(annotationArgs, attr)
			}
			args = append(args, slog.Group("annotations", annotationArgs...))
		}
		if source := annotated.source(); source != "" {
			args = append(args, slog.String("source", source))
		}
	}

	return slog.Group("error", args...)
}
