package bill

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("bill not found")
	ErrAlreadyPaid  = errors.New("bill already paid")
	ErrNotRecurring = errors.New("bill does not recur")
	ErrValidation   = errors.New("invalid bill")
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
