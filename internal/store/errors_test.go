package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorKinds(t *testing.T) {
	ioErr := errors.New("disk on fire")

	tcases := []struct {
		name  string
		err   *StoreError
		kind  ErrorKind
		check func(error) bool
	}{
		{
			name:  "not found",
			err:   NewNotFoundError("room does not exist"),
			kind:  KindNotFound,
			check: IsNotFound,
		},
		{
			name:  "conflict",
			err:   NewConflictError("username is already taken"),
			kind:  KindConflict,
			check: IsConflict,
		},
		{
			name:  "forbidden",
			err:   NewForbiddenError("only the room creator can delete the room"),
			kind:  KindForbidden,
			check: IsForbidden,
		},
		{
			name:  "validation",
			err:   NewValidationError("username must be at least 3 characters"),
			kind:  KindValidation,
			check: IsValidation,
		},
		{
			name:  "unavailable",
			err:   NewUnavailableError("write room record", ioErr),
			kind:  KindUnavailable,
			check: IsUnavailable,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.err.Kind)
			assert.True(t, tc.check(tc.err), "expected kind predicate to match")
			assert.False(t, tc.check(errors.New("unrelated")), "expected predicate to reject foreign errors")
		})
	}
}

func TestStoreErrorWrapping(t *testing.T) {
	ioErr := errors.New("disk on fire")
	err := NewUnavailableError("write room record", ioErr)

	assert.Equal(t, "write room record: disk on fire", err.Error())
	assert.True(t, errors.Is(err, ioErr), "expected the cause to be reachable via errors.Is")

	// A wrapped StoreError is still classifiable.
	wrapped := fmt.Errorf("add message: %w", err)
	assert.True(t, IsUnavailable(wrapped))

	plain := NewNotFoundError("room does not exist")
	assert.Equal(t, "room does not exist", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "forbidden", KindForbidden.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "store unavailable", KindUnavailable.String())
}
