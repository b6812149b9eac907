package skeleton

import (
	"errors"
	"fmt"
)

var (
	// ErrConflictingInput is returned when the same outpoint is appended to
	// the inputs area twice; accepting it would author a double spend.
	ErrConflictingInput = errors.New("conflicting input")

	// ErrBadItem is returned when an item's type does not match the targeted
	// field.
	ErrBadItem = errors.New("item does not match field")
)

// MergeError wraps a merge failure with the field it occurred on.
type MergeError struct {
	Field Field
	Kind  error
	Msg   string
}

func (e *MergeError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Kind.Error())
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Kind.Error(), e.Msg)
}

func (e *MergeError) Unwrap() error { return e.Kind }

func mergeErrf(field Field, kind error, format string, args ...any) error {
	return &MergeError{Field: field, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
