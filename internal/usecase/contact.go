package usecase

import (
	"context"
	"fmt"
	"strings"

	"ratio-analytics-website/internal/domain"
	"ratio-analytics-website/pkg/email"
	"ratio-analytics-website/pkg/logger"
	"ratio-analytics-website/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Mailer delivers contact messages and newsletter signups
type Mailer interface {
	SendContactEmail(ctx context.Context, data email.ContactEmailData) error
	SendNewsletterSignup(ctx context.Context, subscriber string) error
	IsConfigured() bool
}

type contactUsecase struct {
	mailer   Mailer
	validate *validator.Validate
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(mailer Mailer, validate *validator.Validate) domain.ContactUsecase {
	return &contactUsecase{
		mailer:   mailer,
		validate: validate,
	}
}

// SendContactMessage checks the decoy, re-validates the request and delivers it
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest) error {
	if req.Website != "" {
		return domain.ErrSpamDetected
	}

	if err := uc.check(ctx, req); err != nil {
		return err
	}

	if !uc.mailer.IsConfigured() {
		return domain.ErrDeliveryUnavailable
	}

	emailData := email.ContactEmailData{
		SenderName:  strings.TrimSpace(req.Name),
		SenderEmail: strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Company:     strings.TrimSpace(req.Company),
		Service:     strings.TrimSpace(req.Service),
		Message:     strings.TrimSpace(req.Message),
	}

	if err := uc.mailer.SendContactEmail(ctx, emailData); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}

	return nil
}

// Subscribe checks the decoy, validates the address and notifies the team
func (uc *contactUsecase) Subscribe(ctx context.Context, req *domain.NewsletterRequest) error {
	if req.Website != "" {
		return domain.ErrSpamDetected
	}

	if err := uc.check(ctx, req); err != nil {
		return err
	}

	if !uc.mailer.IsConfigured() {
		return domain.ErrDeliveryUnavailable
	}

	if err := uc.mailer.SendNewsletterSignup(ctx, strings.TrimSpace(req.Email)); err != nil {
		return fmt.Errorf("failed to send newsletter signup: %w", err)
	}

	return nil
}

func (uc *contactUsecase) check(ctx context.Context, req interface{}) error {
	err := uc.validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	if fields := validation.FieldErrors(err); len(fields) > 0 {
		logger.Log.Debug("Request failed validation", "errors", validation.FormatValidationErrors(err))
		return &domain.ValidationError{Fields: fields}
	}
	return fmt.Errorf("failed to validate request: %w", err)
}
