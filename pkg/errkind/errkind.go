// Package errkind defines typed errors with categories for the question
// pipeline. Each failure carries a machine-readable Kind, a human-friendly
// message and the underlying cause.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// StartupFailure covers a missing API credential, invalid configuration
	// or a failed initial database connection. Nothing is processed after it.
	StartupFailure Kind = "startup_failure"
	// SchemaInspectionFailure indicates the database metadata could not be read.
	SchemaInspectionFailure Kind = "schema_inspection_failure"
	// TranslationFailure indicates the completion service call failed.
	TranslationFailure Kind = "translation_failure"
	// ExecutionFailure indicates the database rejected or failed a statement.
	ExecutionFailure Kind = "execution_failure"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Is reports whether any *E in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	var e *E
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// Detail returns the text a user should see for err: the underlying cause
// of the outermost *E when there is one, otherwise err.Error().
func Detail(err error) string {
	if err == nil {
		return ""
	}

	var e *E
	if errors.As(err, &e) {
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Message
	}

	return err.Error()
}
