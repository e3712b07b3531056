// Package camelerr defines the typed error taxonomy shared across the
// capability tracker, interpreter, policy engine, and orchestrator.
package camelerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch without string matching.
type Kind string

const (
	KindParse           Kind = "parse"
	KindLookup          Kind = "lookup"
	KindPolicyDenied    Kind = "policy_denied"
	KindSchemaViolation Kind = "schema_violation"
	KindToolFailure     Kind = "tool_failure"
	KindModelFailure    Kind = "model_failure"
	KindCancelled       Kind = "cancelled"
)

// Error is the common error type returned by CaMeL subsystems.
type Error struct {
	Kind    Kind
	Op      string // operation or construct name, e.g. "send_email" or "Import"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: err.Error(), Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
