package v1

import (
	"errors"
	"net/http"

	"ratio-analytics-website/internal/delivery/http/middleware"
	"ratio-analytics-website/internal/delivery/http/response"
	"ratio-analytics-website/internal/domain"
	"ratio-analytics-website/pkg/apperror"
	"ratio-analytics-website/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	contactSentMessage     = "Your message has been sent successfully!"
	newsletterSentMessage  = "Thanks for subscribing!"
	validationFailedReason = "Please correct the highlighted fields"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the JSON form endpoints (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, limiter gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", limiter, handler.SubmitContact)
	public.POST("/newsletter", limiter, handler.Subscribe)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Send a message through the contact form. This is a public endpoint.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	err := h.contactUC.SendContactMessage(c.Request.Context(), &req)
	if h.handleError(c, "contact", req.Email, err) {
		return
	}

	response.Success(c, http.StatusOK, contactSentMessage, nil)
}

// Subscribe godoc
// @Summary      Newsletter Signup
// @Description  Subscribe an email address to the newsletter. This is a public endpoint.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        newsletter  body      domain.NewsletterRequest  true  "Newsletter Signup"
// @Success      200         {object}  response.Response
// @Failure      400         {object}  response.Response
// @Failure      429         {object}  response.Response
// @Failure      503         {object}  response.Response
// @Router       /newsletter [post]
func (h *ContactHandler) Subscribe(c *gin.Context) {
	var req domain.NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	err := h.contactUC.Subscribe(c.Request.Context(), &req)
	if h.handleError(c, "newsletter", req.Email, err) {
		return
	}

	response.Success(c, http.StatusOK, newsletterSentMessage, nil)
}

// handleError maps usecase errors onto the response. It returns true when the
// request has been answered and the caller must stop.
func (h *ContactHandler) handleError(c *gin.Context, form, email string, err error) bool {
	if err == nil {
		return false
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrSpamDetected):
		// Bots get the normal success answer
		security.DefaultLogger().LogSpamDetected(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), middleware.GetRequestID(c), form)
		message := contactSentMessage
		if form == "newsletter" {
			message = newsletterSentMessage
		}
		response.Success(c, http.StatusOK, message, nil)
	case errors.As(err, &validationErr):
		security.DefaultLogger().LogValidationFailed(c.Request.Context(), email, c.ClientIP(), middleware.GetRequestID(c), validationErr.FieldNames())
		c.Error(apperror.Validation(validationFailedReason, validationErr.Fields))
	case errors.Is(err, domain.ErrDeliveryUnavailable):
		c.Error(apperror.Unavailable("Contact service temporarily unavailable", err))
	default:
		c.Error(apperror.New(http.StatusInternalServerError, "Failed to send message. Please try again later.", err))
	}
	return true
}
