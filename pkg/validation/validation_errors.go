package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// User-facing messages per rule
const (
	MsgRequired     = "This field is required"
	MsgInvalidEmail = "Please enter a valid email address"
	MsgInvalidPhone = "Please enter a valid phone number"
	MsgShortMessage = "Message must be at least 10 characters"
	MsgNameLetters  = "Name can only contain letters"
	MsgService      = "Please select a service from the list"
)

var tagMessages = map[string]string{
	TagRequired: MsgRequired,
	TagEmail:    MsgInvalidEmail,
	TagPhone:    MsgInvalidPhone,
	TagMessage:  MsgShortMessage,
	TagName:     MsgNameLetters,
	TagService:  MsgService,
}

// FieldLabels maps JSON field names to labels used in flat error lists
var FieldLabels = map[string]string{
	"name":    "Name",
	"email":   "Email",
	"phone":   "Phone",
	"company": "Company",
	"service": "Service",
	"message": "Message",
}

// MessageFor returns the user-facing message of a failed tag
func MessageFor(tag string) string {
	if msg, ok := tagMessages[tag]; ok {
		return msg
	}
	return fmt.Sprintf("Validation failed (%s)", tag)
}

// FieldErrors converts validator errors into field name → message, first failure per field
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = MessageFor(e.Tag())
	}
	return out
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", getFieldLabel(e.Field()), MessageFor(e.Tag())))
	}
	return messages
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}
