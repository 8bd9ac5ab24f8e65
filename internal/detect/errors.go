package detect

import (
	"errors"
	"fmt"
)

// Kind classifies detection failures.
type Kind int

const (
	// KindInvalidInput is a rejected image or configuration value.
	KindInvalidInput Kind = iota
	// KindProcessing is a fault while reading pixels or scanning.
	KindProcessing
	// KindWorker is a failure to reach or talk to an offload worker.
	KindWorker
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindProcessing:
		return "processing failure"
	case KindWorker:
		return "worker failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned for every detection failure.
type Error struct {
	Kind  Kind
	Field string // offending option, empty when not tied to one
	Value any
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := "detect: " + e.Kind.String()
	if e.Field != "" {
		msg += fmt.Sprintf(": %s=%v", e.Field, e.Value)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(field string, value any, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Value: value, Msg: msg}
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(field string, value any, msg string) error {
	return invalid(field, value, msg)
}

// Processing wraps err as a KindProcessing error.
func Processing(msg string, err error) error {
	return &Error{Kind: KindProcessing, Msg: msg, Err: err}
}

// KindOf returns the kind of a detection error and whether err is one.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsInvalidInput reports whether err is a KindInvalidInput error.
func IsInvalidInput(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindInvalidInput
}

// IsProcessing reports whether err is a KindProcessing error.
func IsProcessing(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindProcessing
}
