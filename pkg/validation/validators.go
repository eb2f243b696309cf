package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Tags registered by RegisterValidators, in the precedence the contact form applies them
const (
	TagRequired = "contact_required"
	TagEmail    = "contact_email"
	TagPhone    = "contact_phone"
	TagMessage  = "contact_message"
	TagName     = "contact_name"
	TagService  = "contact_service"
)

// ServiceValues are the accepted values of the service select
var ServiceValues = []string{
	"data-analytics",
	"business-intelligence",
	"data-engineering",
	"machine-learning",
	"consulting",
	"other",
}

// MessageMinLength is the shortest accepted message, in characters
const MessageMinLength = 10

// Regex patterns
var (
	// something@something.something, no whitespace and a single @ per run
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// digits, whitespace and + - ( )
	phoneRegex = regexp.MustCompile(`^[0-9\s+()-]+$`)

	// Latin letters (accented included), spaces and tabs; no line breaks
	nameRegex = regexp.MustCompile(`^[\p{Latin} \t]+$`)
)

// New returns a validator with the contact tags registered and JSON field names in errors
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation(TagRequired, Required)
	_ = v.RegisterValidation(TagEmail, ValidEmail)
	_ = v.RegisterValidation(TagPhone, ValidPhone)
	_ = v.RegisterValidation(TagMessage, ValidMessage)
	_ = v.RegisterValidation(TagName, ValidName)
	_ = v.RegisterValidation(TagService, ValidService)
}

// Required rejects values that are empty once trimmed
func Required(fl validator.FieldLevel) bool {
	return trimmed(fl) != ""
}

// ValidEmail validates the local@domain.tld shape
func ValidEmail(fl validator.FieldLevel) bool {
	val := trimmed(fl)
	if val == "" {
		return true // Optional, use contact_required if needed
	}
	return emailRegex.MatchString(val)
}

// ValidPhone validates the characters of a phone number, not its length
func ValidPhone(fl validator.FieldLevel) bool {
	val := trimmed(fl)
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// ValidMessage enforces MessageMinLength
func ValidMessage(fl validator.FieldLevel) bool {
	val := trimmed(fl)
	if val == "" {
		return true
	}
	return utf8.RuneCountInString(val) >= MessageMinLength
}

// ValidName validates that a name contains only letters and spaces
func ValidName(fl validator.FieldLevel) bool {
	val := trimmed(fl)
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// ValidService accepts one of ServiceValues
func ValidService(fl validator.FieldLevel) bool {
	val := trimmed(fl)
	if val == "" {
		return true
	}
	for _, s := range ServiceValues {
		if val == s {
			return true
		}
	}
	return false
}

func trimmed(fl validator.FieldLevel) string {
	return strings.TrimSpace(fl.Field().String())
}
