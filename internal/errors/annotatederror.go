// Package errors wraps the standard library errors package with annotated errors.
//
// Annotated errors carry slog attributes and the source location where they were created. SlogError turns
// any error chain into a structured log attribute so that the annotations end up in the log record.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

//nolint:gochecknoglobals // re-exported for convenience so that callers need only one errors import.
var (
	Is     = stderrors.Is
	As     = stderrors.As
	Unwrap = stderrors.Unwrap
	Join   = stderrors.Join
)

type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	pc    uintptr
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates an error without source information, suitable for package level sentinel values.
func NewSentinel(msg string) error {
	return stderrors.New(msg)
}

// New creates an error annotated with the caller's source location and the given attributes.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: nil, attrs: attrs, pc: callerPC(3)} //nolint:mnd // skip New.
}

// Wrap annotates err with msg, the caller's source location, and the given attributes.
//
// Wrap returns nil if err is nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{msg: msg, err: err, attrs: attrs, pc: callerPC(3)} //nolint:mnd // skip Wrap.
}

// DecoratePanic converts a recovered panic value to an error pointing at the line that panicked.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	msg := fmt.Sprintf("panic: %v", excp)
	if err, ok := excp.(error); ok {
		return &annotatedError{msg: "panic", err: err, attrs: nil, pc: panicPC()}
	}
	return &annotatedError{msg: msg, err: nil, attrs: nil, pc: panicPC()}
}

// SlogError returns a slog group attribute describing err with its message, annotations, and source.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attributes are ignored by slog.
	}

	var (
		annotations []any
		source      string
	)
	walk(err, func(ae *annotatedError) {
		for _, attr := range ae.attrs {
			annotations = append(annotations, attr)
		}
		// The innermost annotated error is closest to the root cause.
		if ae.pc != 0 {
			source = sourceOf(ae.pc)
		}
	})

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

// walk visits every annotatedError in the tree rooted at err, outermost first.
func walk(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // we walk the tree manually.
		visit(ae)
	}
	switch x := err.(type) { //nolint:errorlint // we walk the tree manually.
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			walk(e, visit)
		}
	case interface{ Unwrap() error }:
		walk(x.Unwrap(), visit)
	}
}

func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	if runtime.Callers(skip, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// panicPC finds the frame that called panic by skipping past runtime.gopanic in the current stack.
func panicPC() uintptr {
	pcs := make([]uintptr, 32) //nolint:mnd // deep enough for deferred recover handlers.
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	sawPanic := false
	for {
		frame, more := frames.Next()
		if sawPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.PC
		}
		if frame.Function == "runtime.gopanic" {
			sawPanic = true
		}
		if !more {
			return 0
		}
	}
}

func sourceOf(pc uintptr) string {
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}
