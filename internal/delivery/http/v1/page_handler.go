package v1

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"ratio-analytics-website/internal/contactform"
	"ratio-analytics-website/internal/delivery/http/middleware"
	"ratio-analytics-website/internal/domain"
	"ratio-analytics-website/pkg/apperror"
	"ratio-analytics-website/pkg/security"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	contactSubmitLabel    = "Send Message"
	newsletterSubmitLabel = "Subscribe"
	newsletterSuccess     = "Thanks for subscribing! We'll keep you posted."
	newsletterFailure     = "We couldn't sign you up right now. Please try again."
)

// loadTemplates parses the embedded page templates
func loadTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

// PageConfig tunes the server-rendered forms
type PageConfig struct {
	MessageMaxLength int
	SubmitTimeout    time.Duration
	NoticeDuration   time.Duration
}

// PageHandler serves the contact page. Every request drives its own controller
// instances, so no form state is shared between visitors.
type PageHandler struct {
	cfg        PageConfig
	contact    contactform.Transport
	newsletter contactform.Transport
}

// NewPageHandler registers the page routes. contact and newsletter deliver the
// submitted payloads.
func NewPageHandler(pages *gin.RouterGroup, cfg PageConfig, contact, newsletter contactform.Transport, limiter gin.HandlerFunc) {
	handler := &PageHandler{
		cfg:        cfg,
		contact:    contact,
		newsletter: newsletter,
	}

	pages.GET("/contact", handler.ShowContact)
	pages.POST("/contact", limiter, handler.SubmitContact)
	pages.POST("/newsletter", limiter, handler.SubmitNewsletter)
}

// UsecaseTransports delivers page submissions in-process through the usecase
func UsecaseTransports(uc domain.ContactUsecase) (contact, newsletter contactform.Transport) {
	contact = contactform.TransportFunc(func(ctx context.Context, p domain.FormPayload) error {
		return uc.SendContactMessage(ctx, domain.ContactRequestFromPayload(p))
	})
	newsletter = contactform.TransportFunc(func(ctx context.Context, p domain.FormPayload) error {
		return uc.Subscribe(ctx, domain.NewsletterRequestFromPayload(p))
	})
	return contact, newsletter
}

// formSession pairs a controller with the page it renders to
type formSession struct {
	id     string
	action string
	ctl    *contactform.Controller
	page   *contactform.Page
}

type fieldView struct {
	Spec    contactform.FieldSpec
	Value   string
	Error   string
	Valid   bool
	Counter *contactform.Counter
}

type formView struct {
	ID          string
	Action      string
	Fields      []fieldView
	Busy        bool
	SubmitLabel string
	Notice      *contactform.Notice
	CSRFField   string
	CSRFToken   string
	DecoyField  string
}

type pageView struct {
	Contact    formView
	Newsletter formView
}

func (h *PageHandler) contactSession() (*formSession, error) {
	ctl, err := contactform.New(
		contactform.ContactFields(h.cfg.MessageMaxLength),
		h.contact,
		contactform.WithPhoneMask(),
		contactform.WithTimeout(h.cfg.SubmitTimeout),
	)
	if err != nil {
		return nil, err
	}
	return h.attach("contact", "/contact", ctl, contactSubmitLabel)
}

func (h *PageHandler) newsletterSession() (*formSession, error) {
	ctl, err := contactform.New(
		contactform.NewsletterFields(),
		h.newsletter,
		contactform.WithTimeout(h.cfg.SubmitTimeout),
		contactform.WithNotices(newsletterSuccess, newsletterFailure),
	)
	if err != nil {
		return nil, err
	}
	return h.attach("newsletter", "/newsletter", ctl, newsletterSubmitLabel)
}

func (h *PageHandler) attach(id, action string, ctl *contactform.Controller, label string) (*formSession, error) {
	page := contactform.NewPage(label, contactform.WithNoticeTTL(h.cfg.NoticeDuration))
	if err := ctl.Attach(page); err != nil {
		return nil, err
	}
	return &formSession{id: id, action: action, ctl: ctl, page: page}, nil
}

// ShowContact renders the blank contact page
func (h *PageHandler) ShowContact(c *gin.Context) {
	contact, err := h.contactSession()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer contact.ctl.Detach()

	newsletter, err := h.newsletterSession()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer newsletter.ctl.Detach()

	h.render(c, http.StatusOK, contact, newsletter)
}

// SubmitContact runs a posted contact form through a controller and renders the result
func (h *PageHandler) SubmitContact(c *gin.Context) {
	contact, err := h.contactSession()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer contact.ctl.Detach()

	newsletter, err := h.newsletterSession()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer newsletter.ctl.Detach()

	status, err := h.submit(c, contact)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	h.render(c, status, contact, newsletter)
}

// SubmitNewsletter runs the footer form through a controller and renders the page
func (h *PageHandler) SubmitNewsletter(c *gin.Context) {
	contact, err := h.contactSession()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer contact.ctl.Detach()

	newsletter, err := h.newsletterSession()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer newsletter.ctl.Detach()

	status, err := h.submit(c, newsletter)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	h.render(c, status, contact, newsletter)
}

// submit feeds the posted values into s and waits for the submission to settle.
// It returns the HTTP status to render with.
func (h *PageHandler) submit(c *gin.Context, s *formSession) (int, error) {
	for _, spec := range s.ctl.Specs() {
		if err := s.ctl.Input(spec.Name, c.PostForm(spec.Name)); err != nil {
			return 0, err
		}
	}
	s.ctl.SetDecoy(c.PostForm(contactform.DecoyField))

	ctx := c.Request.Context()
	out, err := s.ctl.Submit(ctx)

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrSpamDetected):
		security.DefaultLogger().LogSpamDetected(ctx, c.ClientIP(), c.GetHeader("User-Agent"), middleware.GetRequestID(c), s.id)
		return http.StatusOK, nil
	case errors.As(err, &validationErr):
		email, _ := s.ctl.Field("email")
		security.DefaultLogger().LogValidationFailed(ctx, email.Value, c.ClientIP(), middleware.GetRequestID(c), validationErr.FieldNames())
		return http.StatusUnprocessableEntity, nil
	case err != nil:
		return 0, err
	}

	if err := out.Wait(ctx); err != nil {
		return http.StatusBadGateway, nil
	}
	return http.StatusOK, nil
}

func (h *PageHandler) render(c *gin.Context, status int, contact, newsletter *formSession) {
	token := middleware.CSRFToken(c)
	c.HTML(status, "contact.html", pageView{
		Contact:    contact.view(token),
		Newsletter: newsletter.view(token),
	})
}

func (s *formSession) view(csrfToken string) formView {
	state := s.page.Snapshot()
	fields := s.ctl.Fields()
	specs := s.ctl.Specs()

	v := formView{
		ID:          s.id,
		Action:      s.action,
		Fields:      make([]fieldView, len(specs)),
		Busy:        state.Busy,
		SubmitLabel: state.SubmitLabel,
		Notice:      state.Notice,
		CSRFField:   middleware.CSRFTokenFormField,
		CSRFToken:   csrfToken,
		DecoyField:  contactform.DecoyField,
	}
	for i, spec := range specs {
		fv := fieldView{
			Spec:  spec,
			Value: fields[i].Value,
			Error: state.Errors[spec.Name],
			Valid: state.Valid[spec.Name],
		}
		if counter, ok := state.Counters[spec.Name]; ok {
			fv.Counter = &counter
		}
		v.Fields[i] = fv
	}
	return v
}
