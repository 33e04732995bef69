package relsync

import "fmt"

// StoreError wraps a store round-trip failure with the operation and the
// storage key it happened on.
type StoreError struct {
	Op  string // "get", "set" or "del"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("relsync: store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
