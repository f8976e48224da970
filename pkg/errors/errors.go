// Package errors provides the error taxonomy for the reviewkit engine.
//
// Only two kinds of failure abort a run: configuration errors (bad root,
// before any detection) and render errors (fatal for that render call
// only). Everything else is downgraded to a finding by the engine so that
// one malformed file never prevents reporting on the rest of the set.
package errors

import (
	"errors"
	"fmt"
)

// Kind represents the kind/category of error.
type Kind uint8

const (
	KindUnknown Kind = iota

	// KindConfiguration - bad root path, unreadable config. Fatal,
	// surfaces before any detection runs.
	KindConfiguration

	// KindDetector - a single detector could not process a single file.
	// Non-fatal; the engine converts it to a quality finding.
	KindDetector

	// KindRender - unrepresentable data in the chosen output format.
	// Fatal only for that render call.
	KindRender

	// KindStorage - history store failure.
	KindStorage

	// KindInternal - a bug in the engine itself.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindDetector:
		return "detector"
	case KindRender:
		return "render"
	case KindStorage:
		return "storage"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the base error type for all reviewkit errors.
type Error struct {
	// Kind indicates the category of error.
	Kind Kind

	// Op is the operation being performed (e.g. "engine.Run").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// E constructs an Error with the given kind, operation, message and cause.
func E(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Configuration returns a fatal configuration error.
func Configuration(op, message string, err error) *Error {
	return E(KindConfiguration, op, message, err)
}

// Detector returns a non-fatal detector failure.
func Detector(op, message string, err error) *Error {
	return E(KindDetector, op, message, err)
}

// Render returns a render failure.
func Render(op, message string, err error) *Error {
	return E(KindRender, op, message, err)
}

// Storage returns a history-store failure.
func Storage(op, message string, err error) *Error {
	return E(KindStorage, op, message, err)
}

// KindOf extracts the kind from an error chain. Returns KindUnknown for
// errors that are not *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsConfiguration reports whether the error chain contains a
// configuration error.
func IsConfiguration(err error) bool {
	return KindOf(err) == KindConfiguration
}

// IsRender reports whether the error chain contains a render error.
func IsRender(err error) bool {
	return KindOf(err) == KindRender
}
