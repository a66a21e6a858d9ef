// Package dyerr defines the error taxonomy shared by every layer of the
// array engine: type mismatch, out-of-range conversion, allocation failure,
// invariant violation, parse error, and unsupported operation. Every
// exported error wraps a cause with github.com/pkg/errors so a stack trace
// and a chain of annotations survive up to the outermost caller.
package dyerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the taxonomy of failures an evaluation can produce. All failures
// propagate synchronously; there are no retries and no fallbacks.
type Kind string

const (
	TypeMismatch         Kind = "type_mismatch"
	OutOfRangeConversion Kind = "out_of_range_conversion"
	AllocationFailure    Kind = "allocation_failure"
	InvariantViolation   Kind = "invariant_violation"
	ParseError           Kind = "parse_error"
	Unsupported          Kind = "unsupported"
)

// Error carries a taxonomy Kind plus whatever source/destination type or
// value context the raising site had available.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the original cause.
func (e *Error) Unwrap() error { return e.cause }

// New creates a taxonomied error with a formatted message and a stack trace
// attached at the call site.
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Wrap annotates an existing error with a taxonomy Kind and message, keeping
// the original cause reachable via Unwrap/errors.Is.
func Wrap(cause error, kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause})
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if de, ok := err.(*Error); ok {
			if de.Kind == kind {
				return true
			}
			err = de.cause
			continue
		}
		cause := errors.Cause(err)
		if cause == err {
			return false
		}
		err = cause
	}
	return false
}

// AssignFrom builds the standard "cannot assign from X to Y" message used
// throughout the assignment engine (§4.7, §7).
func AssignFrom(srcType, dstType fmt.Stringer) error {
	return New(TypeMismatch, "cannot assign from %s to %s", srcType, dstType)
}

// FromPanic recovers a taxonomied error from a recover() value, for the
// synchronous call boundaries (internal/assign.Values, node.Evaluate) that
// turn a numeric conversion kernel's panic(dyerr...) back into a returned
// error. ok is false for any panic that isn't one of this package's own
// errors, so the caller can re-panic instead of masking a genuine bug.
func FromPanic(r interface{}) (err error, ok bool) {
	e, isErr := r.(error)
	if !isErr {
		return nil, false
	}
	for cur := e; cur != nil; {
		if _, isOurs := cur.(*Error); isOurs {
			return e, true
		}
		cause := errors.Cause(cur)
		if cause == cur {
			return nil, false
		}
		cur = cause
	}
	return nil, false
}
