package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidAmount is returned when a settlement amount is not positive or
	// exceeds what is left to settle.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotFound is returned when an invoice does not exist or belongs to
	// another owner.
	ErrNotFound = errors.New("invoice not found")
)

// ValidationError collects per-field messages for a rejected invoice.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.add(field, msg)
	return e
}
