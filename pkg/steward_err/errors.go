// pkg/steward_err/errors.go
//
// Error classification: expected operator-facing failures (bad manifest,
// unreachable Consul endpoint) versus steward's own faults.

package steward_err

import (
	"errors"

	cerr "github.com/cockroachdb/errors"
)

// UserError marks a failure the operator caused and can fix, so the CLI can
// report it without a stack trace.
type UserError struct {
	cause error
}

func (e *UserError) Error() string { return e.cause.Error() }
func (e *UserError) Unwrap() error { return e.cause }

// NewExpectedError wraps an error for softer UX handling.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// WrapValidationError annotates a manifest intake failure.
func WrapValidationError(err error) error {
	return NewExpectedError(cerr.WithHint(cerr.WithStack(err), "manifest validation failed"))
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsExpectedUserError(err):
		return 2
	default:
		return 1
	}
}
