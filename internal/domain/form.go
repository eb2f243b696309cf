package domain

import (
	"bytes"
	"encoding/json"
)

// FieldKind is the input type of a form field
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindTel      FieldKind = "tel"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
)

// IsValid checks if a field kind is one the controller understands
func (k FieldKind) IsValid() bool {
	switch k {
	case KindText, KindEmail, KindTel, KindTextarea, KindSelect:
		return true
	}
	return false
}

// Validity tracks the last validation result of a field
type Validity int

const (
	Unvalidated Validity = iota
	Valid
	Invalid
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unvalidated"
	}
}

// SubmissionState is the lifecycle state of a form controller
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateValidating
	StatePending
	StateSucceeded
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// FormField is the live state of one input
type FormField struct {
	Name         string
	Kind         FieldKind
	Required     bool
	Value        string
	Validity     Validity
	ErrorMessage string
}

// PayloadEntry is one name/value pair of a FormPayload
type PayloadEntry struct {
	Name  string
	Value string
}

// FormPayload is an ordered, immutable snapshot of field values taken at submit time.
type FormPayload struct {
	entries []PayloadEntry
}

// NewFormPayload copies entries, so later changes to the slice do not leak in
func NewFormPayload(entries []PayloadEntry) FormPayload {
	cp := make([]PayloadEntry, len(entries))
	copy(cp, entries)
	return FormPayload{entries: cp}
}

// Entries returns a copy of the pairs in field order
func (p FormPayload) Entries() []PayloadEntry {
	cp := make([]PayloadEntry, len(p.entries))
	copy(cp, p.entries)
	return cp
}

// Get returns the value for name
func (p FormPayload) Get(name string) (string, bool) {
	for _, e := range p.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

func (p FormPayload) Len() int {
	return len(p.entries)
}

// MarshalJSON writes a flat object keeping field order
func (p FormPayload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
