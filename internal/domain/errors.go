package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSpamDetected is returned when the decoy field was filled in. Never shown to the visitor.
	ErrSpamDetected = errors.New("submission rejected: decoy field filled")
	// ErrDeliveryUnavailable means no mailer is configured to deliver messages
	ErrDeliveryUnavailable = errors.New("delivery service is not configured")
)

// ValidationError carries the per-field messages of a rejected form
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldNames returns the failing field names, sorted
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransportError wraps a failed outbound submission
type TransportError struct {
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submission failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
