package service

import (
	"sort"
	"strings"

	"taskmanager/internal/repository"
)

// ErrTaskNotFound is returned for ids that do not exist.
var ErrTaskNotFound = repository.ErrTaskNotFound

// ValidationError reports bad client input. Payload problems are keyed by
// field in Fields; query-parameter problems carry a single Message.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidQuery(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
