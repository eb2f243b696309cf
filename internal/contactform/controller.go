// Package contactform drives a web form through validation and submission.
//
// A Controller owns the field values of one form instance and its submission
// lifecycle: idle, validating, pending, then succeeded or failed, and straight
// back to idle. Presentation goes through a View and the outbound request
// through a Transport, so the same controller backs the server-rendered pages
// and any other surface.
package contactform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ratio-analytics-website/internal/domain"
	"ratio-analytics-website/pkg/logger"
)

var (
	ErrSubmissionInFlight = errors.New("contactform: submission already in flight")
	ErrDetached           = errors.New("contactform: controller is not attached to a view")
	ErrAlreadyAttached    = errors.New("contactform: controller is already attached")
	ErrUnknownField       = errors.New("contactform: unknown field")
)

const (
	DefaultSuccessNotice = "Message sent! We will get back to you soon."
	DefaultFailureNotice = "Something went wrong sending your message. Please try again."
)

// Transport delivers a payload. A nil error means the backend accepted it.
// Implementations must return once ctx is done.
type Transport interface {
	Send(ctx context.Context, payload domain.FormPayload) error
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, payload domain.FormPayload) error

func (f TransportFunc) Send(ctx context.Context, payload domain.FormPayload) error {
	return f(ctx, payload)
}

// Observer is told about every state transition. It runs under the controller
// lock and must not call back into the controller.
type Observer func(from, to domain.SubmissionState)

type Option func(*Controller)

// WithTimeout fails a pending submission after d. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// WithNotices overrides the success and failure notices
func WithNotices(success, failure string) Option {
	return func(c *Controller) {
		c.successNotice = success
		c.failureNotice = failure
	}
}

// WithMask rewrites every input of field through fn
func WithMask(field string, fn func(string) string) Option {
	return func(c *Controller) { c.masks[field] = fn }
}

// WithPhoneMask applies FormatPhone to the phone field
func WithPhoneMask() Option {
	return WithMask("phone", FormatPhone)
}

// Controller is one form instance. It is safe for concurrent use.
type Controller struct {
	mu            sync.Mutex
	specs         []FieldSpec
	fields        []*domain.FormField
	index         map[string]int
	decoy         string
	state         domain.SubmissionState
	transport     Transport
	validator     *Validator
	view          View
	timeout       time.Duration
	observers     []Observer
	masks         map[string]func(string) string
	successNotice string
	failureNotice string
	cancel        context.CancelFunc
	inflight      sync.WaitGroup
}

// New builds a controller for specs. Field names must be unique and the decoy name is reserved.
func New(specs []FieldSpec, transport Transport, opts ...Option) (*Controller, error) {
	if transport == nil {
		return nil, errors.New("contactform: transport is required")
	}

	c := &Controller{
		specs:         make([]FieldSpec, len(specs)),
		fields:        make([]*domain.FormField, 0, len(specs)),
		index:         make(map[string]int, len(specs)),
		transport:     transport,
		validator:     NewValidator(),
		masks:         make(map[string]func(string) string),
		successNotice: DefaultSuccessNotice,
		failureNotice: DefaultFailureNotice,
	}
	copy(c.specs, specs)

	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("contactform: field %d has no name", i)
		}
		if spec.Name == DecoyField {
			return nil, fmt.Errorf("contactform: field name %q is reserved", DecoyField)
		}
		if !spec.Kind.IsValid() {
			return nil, fmt.Errorf("contactform: field %q has unknown kind %q", spec.Name, spec.Kind)
		}
		if _, dup := c.index[spec.Name]; dup {
			return nil, fmt.Errorf("contactform: duplicate field %q", spec.Name)
		}
		c.index[spec.Name] = i
		c.fields = append(c.fields, &domain.FormField{
			Name:     spec.Name,
			Kind:     spec.Kind,
			Required: spec.Required,
		})
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Attach binds the controller to v and draws the initial counters
func (c *Controller) Attach(v View) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != nil {
		return ErrAlreadyAttached
	}
	c.view = v
	for i, spec := range c.specs {
		if spec.MaxLength > 0 {
			v.SetCounter(spec.Name, charCount(c.fields[i].Value), spec.MaxLength)
		}
	}
	return nil
}

// Detach releases the view, cancels an in-flight submission and waits for it to settle.
// A cancelled submission resolves as failed.
func (c *Controller) Detach() {
	c.mu.Lock()
	c.view = nil
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.inflight.Wait()
}

// Input records an edit. An invalid field loses its error without being re-validated.
func (c *Controller) Input(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view == nil {
		return ErrDetached
	}
	i, ok := c.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	if mask, ok := c.masks[name]; ok {
		value = mask(value)
	}
	f := c.fields[i]
	f.Value = value
	if f.Validity == domain.Invalid {
		f.Validity = domain.Unvalidated
		f.ErrorMessage = ""
		c.view.ClearFieldError(name)
	}
	if limit := c.specs[i].MaxLength; limit > 0 {
		c.view.SetCounter(name, charCount(value), limit)
	}
	return nil
}

// SetDecoy records the value of the honeypot input
func (c *Controller) SetDecoy(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decoy = value
}

// Blur validates a single field and updates its annotation
func (c *Controller) Blur(name string) (Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view == nil {
		return Verdict{}, ErrDetached
	}
	i, ok := c.index[name]
	if !ok {
		return Verdict{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return c.validateLocked(i), nil
}

// Submit starts a submission. The decoy check runs first and drops the attempt
// with domain.ErrSpamDetected; an invalid form returns *domain.ValidationError;
// a submit while another is pending returns ErrSubmissionInFlight. Otherwise the
// payload is sent in the background and the returned Outcome resolves once the
// controller is back to idle.
func (c *Controller) Submit(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view == nil {
		return nil, ErrDetached
	}
	if c.state != domain.StateIdle {
		return nil, ErrSubmissionInFlight
	}
	if c.decoy != "" {
		logger.Log.Warn("decoy field filled, dropping submission")
		return nil, domain.ErrSpamDetected
	}

	c.view.ClearNotice()
	c.setState(domain.StateValidating)

	if invalid := c.validateFormLocked(); len(invalid) > 0 {
		c.setState(domain.StateIdle)
		return nil, &domain.ValidationError{Fields: invalid}
	}

	c.setState(domain.StatePending)
	c.view.SetBusy(true)

	payload := c.payloadLocked()
	var (
		callCtx context.Context
		cancel  context.CancelFunc
	)
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel

	out := newOutcome()
	c.inflight.Add(1)
	go c.send(callCtx, cancel, payload, out)
	return out, nil
}

func (c *Controller) send(ctx context.Context, cancel context.CancelFunc, payload domain.FormPayload, out *Outcome) {
	defer c.inflight.Done()
	defer cancel()

	// A transport that ignores ctx must not hold the form past its deadline
	result := make(chan error, 1)
	go func() { result <- c.transport.Send(ctx, payload) }()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Err: err}
		}
	}
	c.finish(err, out)
}

func (c *Controller) finish(err error, out *Outcome) {
	c.mu.Lock()
	if err == nil {
		c.setState(domain.StateSucceeded)
		for i, f := range c.fields {
			f.Value = ""
			f.Validity = domain.Unvalidated
			f.ErrorMessage = ""
			if c.view != nil {
				c.view.ResetField(f.Name)
				if limit := c.specs[i].MaxLength; limit > 0 {
					c.view.SetCounter(f.Name, 0, limit)
				}
			}
		}
		c.decoy = ""
		if c.view != nil {
			c.view.ShowNotice(NoticeSuccess, c.successNotice)
		}
	} else {
		c.setState(domain.StateFailed)
		logger.Log.Error("Form submission failed", "error", err)
		if c.view != nil {
			c.view.ShowNotice(NoticeError, c.failureNotice)
		}
	}
	if c.view != nil {
		c.view.SetBusy(false)
	}
	c.setState(domain.StateIdle)
	c.cancel = nil
	c.mu.Unlock()

	out.resolve(err)
}

// validateLocked runs the field rules for fields[i] and mirrors the verdict on the view
func (c *Controller) validateLocked(i int) Verdict {
	f := c.fields[i]
	verdict := c.validator.Check(f.Kind, f.Name, f.Required, f.Value)

	c.view.ClearFieldError(f.Name)
	if verdict.Valid {
		f.Validity = domain.Valid
		f.ErrorMessage = ""
		c.view.MarkFieldValid(f.Name)
	} else {
		f.Validity = domain.Invalid
		f.ErrorMessage = verdict.Message
		c.view.ShowFieldError(f.Name, verdict.Message)
	}
	return verdict
}

// validateFormLocked validates every required field and returns the failures
func (c *Controller) validateFormLocked() map[string]string {
	invalid := make(map[string]string)
	for i, f := range c.fields {
		if !f.Required {
			continue
		}
		if v := c.validateLocked(i); !v.Valid {
			invalid[f.Name] = v.Message
		}
	}
	return invalid
}

func (c *Controller) payloadLocked() domain.FormPayload {
	entries := make([]domain.PayloadEntry, 0, len(c.fields))
	for _, f := range c.fields {
		entries = append(entries, domain.PayloadEntry{Name: f.Name, Value: f.Value})
	}
	return domain.NewFormPayload(entries)
}

func (c *Controller) setState(to domain.SubmissionState) {
	from := c.state
	c.state = to
	for _, o := range c.observers {
		o(from, to)
	}
}

// State returns the current lifecycle state
func (c *Controller) State() domain.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Field returns a copy of the named field
func (c *Controller) Field(name string) (domain.FormField, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[name]
	if !ok {
		return domain.FormField{}, false
	}
	return *c.fields[i], true
}

// Fields returns copies of all fields in declaration order
func (c *Controller) Fields() []domain.FormField {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.FormField, len(c.fields))
	for i, f := range c.fields {
		out[i] = *f
	}
	return out
}

// Specs returns the field declarations in order
func (c *Controller) Specs() []FieldSpec {
	out := make([]FieldSpec, len(c.specs))
	copy(out, c.specs)
	return out
}
