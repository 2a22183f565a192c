package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks configuration defects and bad caller input:
	// a non-positive sample count, a regime weight table that does not sum
	// to 1, an unknown category name.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNumericDomain marks a sampled or derived value that escaped its
	// finite, non-negative range. It always indicates a distribution
	// parameter bug, never a transient condition.
	ErrNumericDomain = errors.New("numeric domain error")
)

// DomainError describes which field of which record broke its range.
type DomainError struct {
	Index int     // position of the record in the run
	Field string  // column name, e.g. "session_duration"
	Value float64 // offending value
	Want  string  // human readable constraint, e.g. ">= 30000"
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("record %d: %s = %v, want %s", e.Index, e.Field, e.Value, e.Want)
}

// Unwrap lets errors.Is(err, ErrNumericDomain) match.
func (e *DomainError) Unwrap() error {
	return ErrNumericDomain
}
