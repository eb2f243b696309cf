package usecase_test

import (
	"context"
	"errors"
	"testing"

	"ratio-analytics-website/internal/domain"
	"ratio-analytics-website/internal/usecase"
	"ratio-analytics-website/pkg/email"
	"ratio-analytics-website/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendContactEmail(ctx context.Context, data email.ContactEmailData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *MockMailer) SendNewsletterSignup(ctx context.Context, subscriber string) error {
	return m.Called(ctx, subscriber).Error(0)
}

func (m *MockMailer) IsConfigured() bool {
	return m.Called().Bool(0)
}

func validContact() *domain.ContactRequest {
	return &domain.ContactRequest{
		Name:    "  Ana Núñez ",
		Email:   "ana@ratio.co",
		Phone:   "(123) 456-7890",
		Service: "consulting",
		Message: "We need a sales dashboard.",
	}
}

func TestSendContactMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Should deliver trimmed data", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())

		mailer.On("IsConfigured").Return(true)
		mailer.On("SendContactEmail", ctx, mock.AnythingOfType("email.ContactEmailData")).Return(nil).Run(func(args mock.Arguments) {
			data := args.Get(1).(email.ContactEmailData)
			assert.Equal(t, "Ana Núñez", data.SenderName)
			assert.Equal(t, "consulting", data.Service)
		})

		require.NoError(t, uc.SendContactMessage(ctx, validContact()))
		mailer.AssertExpectations(t)
	})

	t.Run("Should drop decoy submissions before validation", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())

		err := uc.SendContactMessage(ctx, &domain.ContactRequest{Website: "spam.example"})
		assert.ErrorIs(t, err, domain.ErrSpamDetected)
		mailer.AssertNotCalled(t, "SendContactEmail", mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "IsConfigured")
	})

	t.Run("Should return field errors", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())

		req := validContact()
		req.Message = "too short"
		req.Phone = "12-ab"

		err := uc.SendContactMessage(ctx, req)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, validation.MsgShortMessage, ve.Fields["message"])
		assert.Equal(t, validation.MsgInvalidPhone, ve.Fields["phone"])
		mailer.AssertNotCalled(t, "SendContactEmail", mock.Anything, mock.Anything)
	})

	t.Run("Should reject line breaks smuggled into header values", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())

		req := validContact()
		req.Service = "x)\r\nBcc: victim@evil.example\r\nX-Injected: 1"
		req.Name = "Ana\r\n\r\nBody"

		err := uc.SendContactMessage(ctx, req)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, validation.MsgService, ve.Fields["service"])
		assert.Equal(t, validation.MsgNameLetters, ve.Fields["name"])
		mailer.AssertNotCalled(t, "SendContactEmail", mock.Anything, mock.Anything)
	})

	t.Run("Should reject services outside the list", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())

		req := validContact()
		req.Service = "crypto-mining"

		var ve *domain.ValidationError
		require.ErrorAs(t, uc.SendContactMessage(ctx, req), &ve)
		assert.Equal(t, map[string]string{"service": validation.MsgService}, ve.Fields)
	})

	t.Run("Should refuse when delivery is not configured", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())
		mailer.On("IsConfigured").Return(false)

		assert.ErrorIs(t, uc.SendContactMessage(ctx, validContact()), domain.ErrDeliveryUnavailable)
	})

	t.Run("Should wrap delivery failures", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())
		smtpErr := errors.New("smtp: 421")
		mailer.On("IsConfigured").Return(true)
		mailer.On("SendContactEmail", ctx, mock.Anything).Return(smtpErr)

		err := uc.SendContactMessage(ctx, validContact())
		assert.ErrorIs(t, err, smtpErr)
		assert.Contains(t, err.Error(), "failed to send contact email")
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("Should notify with trimmed email", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())
		mailer.On("IsConfigured").Return(true)
		mailer.On("SendNewsletterSignup", ctx, "ana@ratio.co").Return(nil)

		require.NoError(t, uc.Subscribe(ctx, &domain.NewsletterRequest{Email: " ana@ratio.co "}))
		mailer.AssertExpectations(t)
	})

	t.Run("Should reject invalid email", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())

		var ve *domain.ValidationError
		require.ErrorAs(t, uc.Subscribe(ctx, &domain.NewsletterRequest{Email: "ana"}), &ve)
		assert.Equal(t, validation.MsgInvalidEmail, ve.Fields["email"])
	})

	t.Run("Should drop decoy submissions", func(t *testing.T) {
		mailer := new(MockMailer)
		uc := usecase.NewContactUsecase(mailer, validation.New())
		assert.ErrorIs(t, uc.Subscribe(ctx, &domain.NewsletterRequest{Email: "a@b.co", Website: "x"}), domain.ErrSpamDetected)
	})
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report memory store without ping", func(t *testing.T) {
		got := usecase.NewHealthUsecase("log", nil).Check(ctx)
		assert.Equal(t, map[string]string{"status": "ok", "delivery": "log", "rate_limit_store": "memory"}, got)
	})

	t.Run("Should report redis when reachable", func(t *testing.T) {
		ping := func(context.Context) error { return nil }
		assert.Equal(t, "redis", usecase.NewHealthUsecase("smtp", ping).Check(ctx)["rate_limit_store"])
	})

	t.Run("Should fall back to memory when ping fails", func(t *testing.T) {
		ping := func(context.Context) error { return errors.New("dial tcp: refused") }
		assert.Equal(t, "memory", usecase.NewHealthUsecase("smtp", ping).Check(ctx)["rate_limit_store"])
	})
}
