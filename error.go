package condz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error provides rich context about a failed resolution.
// It wraps the underlying error with the path of the pipeline that
// failed, the bound input value that was being evaluated, and timing
// information for debugging.
//
// Error handling example:
//
//	result, err := rules.OrElse(ctx, 0)
//	if err != nil {
//	    var condErr *condz.Error[Order]
//	    if errors.As(err, &condErr) {
//	        log.Printf("failed at: %s", strings.Join(condErr.Path, " -> "))
//	        log.Printf("input: %+v", condErr.InputData)
//	    }
//	}
type Error[T any] struct {
	InputData T
	Timestamp time.Time
	Err       error
	Path      []Name
	Duration  time.Duration
	Timeout   bool
	Canceled  bool
}

// Error implements the error interface, providing a detailed error message.
func (e *Error[T]) Error() string {
	if len(e.Path) == 0 {
		if e.Err == nil {
			return "unknown error"
		}
		return e.Err.Error()
	}

	location := strings.Join(e.Path, " -> ")
	if e.Timeout {
		return fmt.Sprintf("%s timed out after %v: %v", location, e.Duration, e.Err)
	}
	if e.Canceled {
		return fmt.Sprintf("%s canceled after %v: %v", location, e.Duration, e.Err)
	}
	return fmt.Sprintf("%s failed after %v: %v", location, e.Duration, e.Err)
}

// Unwrap returns the underlying error, supporting error wrapping patterns.
func (e *Error[T]) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error was caused by a timeout.
func (e *Error[T]) IsTimeout() bool {
	return e.Timeout || errors.Is(e.Err, context.DeadlineExceeded)
}

// IsCanceled returns true if the error was caused by cancellation.
func (e *Error[T]) IsCanceled() bool {
	return e.Canceled || errors.Is(e.Err, context.Canceled)
}

// recoverFromPanic converts a panicking predicate or action into a
// *Error[In] so a misbehaving callable cannot crash the caller. The
// result is reset to the zero value, matching the error contract of the
// terminal operations.
func recoverFromPanic[In, Out any](result *Out, err *error, name Name, input In) {
	if r := recover(); r != nil {
		var zero Out
		*result = zero
		*err = &Error[In]{
			Timestamp: time.Now(),
			InputData: input,
			Err:       fmt.Errorf("panic: %v", r),
			Path:      []Name{name},
		}
	}
}
