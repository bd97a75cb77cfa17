package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies store errors so callers can branch on the condition
// instead of matching message strings.
type ErrorKind int

const (
	// KindNotFound means the room, account or session does not exist.
	KindNotFound ErrorKind = iota
	// KindConflict means a uniqueness constraint was violated, such as a
	// duplicate room id or a username already taken within a room.
	KindConflict
	// KindForbidden means the caller lacks the authority for the operation.
	KindForbidden
	// KindValidation means the input failed a validation rule.
	KindValidation
	// KindUnavailable means the durable medium failed. Callers should treat
	// this as transient; it is the only kind worth surfacing to an operator.
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindUnavailable:
		return "store unavailable"
	default:
		return "unknown"
	}
}

type StoreError struct {
	Kind    ErrorKind `json:"-"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(message string) *StoreError {
	return &StoreError{
		Kind:    KindNotFound,
		Message: message,
	}
}

func NewConflictError(message string) *StoreError {
	return &StoreError{
		Kind:    KindConflict,
		Message: message,
	}
}

func NewForbiddenError(message string) *StoreError {
	return &StoreError{
		Kind:    KindForbidden,
		Message: message,
	}
}

func NewValidationError(message string) *StoreError {
	return &StoreError{
		Kind:    KindValidation,
		Message: message,
	}
}

func NewUnavailableError(message string, err error) *StoreError {
	return &StoreError{
		Kind:    KindUnavailable,
		Message: message,
		Err:     err,
	}
}

func IsNotFound(err error) bool    { return hasKind(err, KindNotFound) }
func IsConflict(err error) bool    { return hasKind(err, KindConflict) }
func IsForbidden(err error) bool   { return hasKind(err, KindForbidden) }
func IsValidation(err error) bool  { return hasKind(err, KindValidation) }
func IsUnavailable(err error) bool { return hasKind(err, KindUnavailable) }

func hasKind(err error, kind ErrorKind) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == kind
}
