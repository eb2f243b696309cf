package contactform

import (
	"errors"
	"strings"

	"ratio-analytics-website/internal/domain"
	"ratio-analytics-website/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Verdict is the result of validating one field
type Verdict struct {
	Valid   bool
	Message string
}

// Validator applies the field rules. It holds no form state and is safe to share.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validation.New()}
}

// Check validates value for a field of the given kind and name.
// Rules run in order (required, email, phone, message length, name letters, service choice) and the first failure wins.
func (fv *Validator) Check(kind domain.FieldKind, name string, required bool, value string) Verdict {
	tags := make([]string, 0, 3)
	if required {
		tags = append(tags, validation.TagRequired)
	}
	switch kind {
	case domain.KindEmail:
		tags = append(tags, validation.TagEmail)
	case domain.KindTel:
		tags = append(tags, validation.TagPhone)
	}
	switch name {
	case "message":
		tags = append(tags, validation.TagMessage)
	case "name":
		tags = append(tags, validation.TagName)
	case "service":
		tags = append(tags, validation.TagService)
	}
	if len(tags) == 0 {
		return Verdict{Valid: true}
	}

	err := fv.validate.Var(strings.TrimSpace(value), strings.Join(tags, ","))
	if err == nil {
		return Verdict{Valid: true}
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return Verdict{Message: validation.MessageFor(fieldErrs[0].Tag())}
	}
	return Verdict{Message: err.Error()}
}
