package contactform

import "ratio-analytics-website/internal/domain"

// DecoyField is the honeypot input name. Humans never see it, so it must stay empty.
const DecoyField = "website"

// FieldSpec declares one input of a form
type FieldSpec struct {
	Name        string
	Kind        domain.FieldKind
	Label       string
	Placeholder string
	Required    bool
	MaxLength   int // enables the character counter when > 0
	Options     []Choice
}

// Choice is a select option
type Choice struct {
	Value string
	Label string
}

// ServiceOptions are the services offered on the contact form
var ServiceOptions = []Choice{
	{Value: "data-analytics", Label: "Data Analytics"},
	{Value: "business-intelligence", Label: "Business Intelligence"},
	{Value: "data-engineering", Label: "Data Engineering"},
	{Value: "machine-learning", Label: "Machine Learning"},
	{Value: "consulting", Label: "Consulting"},
	{Value: "other", Label: "Other"},
}

// ContactFields is the contact page form. messageMax caps the message counter.
func ContactFields(messageMax int) []FieldSpec {
	return []FieldSpec{
		{Name: "name", Kind: domain.KindText, Label: "Full name", Placeholder: "Jane Doe", Required: true},
		{Name: "email", Kind: domain.KindEmail, Label: "Email", Placeholder: "jane@company.com", Required: true},
		{Name: "phone", Kind: domain.KindTel, Label: "Phone", Placeholder: "(123) 456-7890"},
		{Name: "company", Kind: domain.KindText, Label: "Company"},
		{Name: "service", Kind: domain.KindSelect, Label: "Service of interest", Required: true, Options: ServiceOptions},
		{Name: "message", Kind: domain.KindTextarea, Label: "Message", Placeholder: "Tell us about your project", Required: true, MaxLength: messageMax},
	}
}

// NewsletterFields is the footer signup form
func NewsletterFields() []FieldSpec {
	return []FieldSpec{
		{Name: "email", Kind: domain.KindEmail, Label: "Email", Placeholder: "you@company.com", Required: true},
	}
}
