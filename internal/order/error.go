package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrItemsUnavailable = errors.New("some items are not available")
)

// ValidationError carries field-level detail for a rejected payload.
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
	return "invalid request data: " + strings.Join(parts, "; ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
