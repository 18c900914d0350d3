package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError: caller-supplied input fails a domain rule. Recoverable,
// surfaced verbatim as field-level form messages.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(msg string, flds ...FieldError) error {
	return &ValidationError{errors.New(msg), flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConstraintError: the operation would violate an invariant (removing the
// last child, deleting a session with live registrations, an illegal status
// transition). Recoverable, surfaced as a blocking message with guidance.
type ConstraintError struct {
	msg string
}

func NewConstraintError(msg string) error {
	return &ConstraintError{msg}
}

func (e ConstraintError) Error() string { return e.msg }

func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// NotFoundError: the referenced entity does not exist or is not visible to
// the caller. External-facing messages treat it as "no rows" so existence is
// never leaked.
type NotFoundError struct {
	msg string
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{msg}
}

func (e NotFoundError) Error() string { return e.msg }

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// TransientError: a collaborator call failed for reasons outside input
// validity. Reported generically, never retried here.
type TransientError struct {
	Err error
}

func NewTransientError(err error, msg string) error {
	return &TransientError{errors.Wrap(err, msg)}
}

func (e TransientError) Error() string {
	if e.Err == nil {
		return "transient failure"
	}
	return e.Err.Error()
}

func (e TransientError) Unwrap() error { return e.Err }

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
