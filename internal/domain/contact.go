package domain

import "context"

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"contact_required,contact_name"`
	Email   string `json:"email" validate:"contact_required,contact_email"`
	Phone   string `json:"phone" validate:"contact_phone"`
	Company string `json:"company"`
	Service string `json:"service" validate:"contact_required,contact_service"`
	Message string `json:"message" validate:"contact_required,contact_message"`
	Website string `json:"website"` // decoy, must stay empty
}

// ContactRequestFromPayload maps a controller payload onto the backend request
func ContactRequestFromPayload(p FormPayload) *ContactRequest {
	req := &ContactRequest{}
	req.Name, _ = p.Get("name")
	req.Email, _ = p.Get("email")
	req.Phone, _ = p.Get("phone")
	req.Company, _ = p.Get("company")
	req.Service, _ = p.Get("service")
	req.Message, _ = p.Get("message")
	return req
}

// NewsletterRequest represents a footer newsletter signup
type NewsletterRequest struct {
	Email   string `json:"email" validate:"contact_required,contact_email"`
	Website string `json:"website"`
}

// NewsletterRequestFromPayload maps a controller payload onto the backend request
func NewsletterRequestFromPayload(p FormPayload) *NewsletterRequest {
	req := &NewsletterRequest{}
	req.Email, _ = p.Get("email")
	return req
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SendContactMessage validates and delivers a contact form message
	SendContactMessage(ctx context.Context, req *ContactRequest) error
	// Subscribe validates and records a newsletter signup
	Subscribe(ctx context.Context, req *NewsletterRequest) error
}

// HealthUsecase reports the state of the service dependencies
type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}
