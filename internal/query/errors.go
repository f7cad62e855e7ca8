package query

import (
	"errors"
	"fmt"
)

// NotFoundError reports an unknown record id on a detail fetch.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent not found: %s", e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StoreError reports an unreachable or failing catalog store. There is
// no fallback for it: the request fails. Cache failures, by contrast,
// never surface as errors at all.
type StoreError struct {
	Op    string
	cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("catalog store failure during %s: %v", e.Op, e.cause)
}

func (e *StoreError) Unwrap() error {
	return e.cause
}

// IsStoreError reports whether err is a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
