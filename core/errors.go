package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key is not present in a table's index.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting or renaming onto a key that is
	// already live in the table.
	ErrDuplicateKey = errors.New("duplicate key")

	ErrEmptyKey    = errors.New("empty key")
	ErrKeyMismatch = errors.New("record key does not match")

	// ErrCorrupt marks data that the index says exists but which cannot be read
	// back. It is never returned for keys that are simply absent.
	ErrCorrupt = errors.New("corrupt data")
)

// CorruptRecordError reports an indexed slot that could not be turned back
// into the record it should hold.
//
// errors.Is(err, ErrCorrupt) holds for every CorruptRecordError; the
// underlying cause is available via errors.Unwrap.
type CorruptRecordError struct {
	Table string
	Key   string
	Slot  int
	cause error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("%s: corrupt record for key %q at slot %d: %v", e.Table, e.Key, e.Slot, e.cause)
}

func (e *CorruptRecordError) Unwrap() error { return e.cause }

func (e *CorruptRecordError) Is(target error) bool { return target == ErrCorrupt }
