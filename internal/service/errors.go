package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when a vote or accept read-modify-write loses
	// its race more times than the bounded retry allows.
	ErrConflict = errors.New("conflicting concurrent update")
)

// ValidationError reports which field failed which rule.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Rule)
}
