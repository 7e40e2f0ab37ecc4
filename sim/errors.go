package sim

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode categorizes simulation errors.
type ErrorCode string

const (
	// ErrCodeConstruction indicates a malformed topology, synchrony model,
	// or channel reference detected before the run.
	ErrCodeConstruction ErrorCode = "CONSTRUCTION"

	// ErrCodeUnhandledEvent indicates an algorithm's OnEvent did not match
	// the delivered event kind. Fatal to the run; events are never dropped.
	ErrCodeUnhandledEvent ErrorCode = "UNHANDLED_EVENT"

	// ErrCodeScheduling indicates a schedule or lifecycle call in the wrong
	// run state. Programmer error, fatal.
	ErrCodeScheduling ErrorCode = "SCHEDULING"

	// ErrCodeSerialization indicates a malformed or incompatible persisted
	// trace. Fatal to that load only.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"

	// ErrCodeRunFailed indicates an algorithm returned an error during the
	// run; the offending pid, event, and simulated time are attached.
	ErrCodeRunFailed ErrorCode = "RUN_FAILED"
)

// SimError is the structured error type used across the engine. Run-time
// failures carry the pid, event, and simulated time at which they occurred.
type SimError struct {
	Code    ErrorCode
	Message string

	// Pid is the process the failure occurred at (NoPid when not applicable).
	Pid Pid
	// Event is the event being applied when the failure occurred, if any.
	Event Event
	// Time is the simulated time of the failure.
	Time time.Duration

	// Err is the wrapped cause, if any.
	Err error
}

func (e *SimError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Pid != NoPid {
		msg += fmt.Sprintf(" (pid=%s, t=%s)", e.Pid, e.Time)
	}
	if e.Event != nil {
		msg += fmt.Sprintf(" [event=%T@%s]", e.Event, e.Event.Target())
	}
	return msg
}

func (e *SimError) Unwrap() error {
	return e.Err
}

// Unhandled builds the error an algorithm returns from the fallback arm of
// its event dispatch.
func Unhandled(ev Event) error {
	return &SimError{
		Code:    ErrCodeUnhandledEvent,
		Message: fmt.Sprintf("no handler for event %T", ev),
		Event:   ev,
	}
}

func constructionErrorf(format string, args ...any) *SimError {
	return &SimError{Code: ErrCodeConstruction, Message: fmt.Sprintf(format, args...)}
}

func schedulingErrorf(format string, args ...any) *SimError {
	return &SimError{Code: ErrCodeScheduling, Message: fmt.Sprintf(format, args...)}
}

// SerializationErrorf builds a serialization error; used by the trace codec.
func SerializationErrorf(format string, args ...any) *SimError {
	return &SimError{Code: ErrCodeSerialization, Message: fmt.Sprintf(format, args...)}
}

func hasCode(err error, code ErrorCode) bool {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsConstructionError reports whether err is a construction error.
// Uses errors.As to handle wrapped errors.
func IsConstructionError(err error) bool { return hasCode(err, ErrCodeConstruction) }

// IsUnhandledEvent reports whether err stems from an unmatched event kind.
func IsUnhandledEvent(err error) bool { return hasCode(err, ErrCodeUnhandledEvent) }

// IsSchedulingError reports whether err is a scheduling lifecycle error.
func IsSchedulingError(err error) bool { return hasCode(err, ErrCodeScheduling) }

// IsSerializationError reports whether err is a trace load/store error.
func IsSerializationError(err error) bool { return hasCode(err, ErrCodeSerialization) }
