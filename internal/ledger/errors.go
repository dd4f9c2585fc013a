package ledger

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable is matched by every failure the Ledger surfaces from its Store.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Error describes a failed ledger operation against the backing store.
type Error struct {
	Op    string
	Key   string
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("ledger %s %q: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Cause)
}

// Unwrap exposes both ErrStorageUnavailable and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Cause}
}

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Key: key, Cause: err}
}
