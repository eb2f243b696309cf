package contactform

import (
	"fmt"
	"sync"
	"time"
)

// NoticeKind selects the style of the form-level message
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// View is the presentation surface a controller drives. Calls are made while the
// controller holds its lock, so implementations must not call back into it.
type View interface {
	// ShowFieldError annotates a field. A field carries at most one annotation.
	ShowFieldError(field, message string)
	// ClearFieldError removes the annotation of a field, if any
	ClearFieldError(field string)
	// MarkFieldValid sets the success indicator of a field
	MarkFieldValid(field string)
	// ResetField drops both the annotation and the success indicator
	ResetField(field string)
	SetCounter(field string, length, limit int)
	// SetBusy disables the submit control and shows the loading label, or restores it
	SetBusy(busy bool)
	ShowNotice(kind NoticeKind, message string)
	ClearNotice()
}

// Counter is the character counter of a length-capped field
type Counter struct {
	Length int
	Max    int
}

func (c Counter) Text() string {
	return fmt.Sprintf("%d/%d characters", c.Length, c.Max)
}

// NearLimit reports a length above 90% of the cap
func (c Counter) NearLimit() bool {
	return c.Max > 0 && float64(c.Length) > float64(c.Max)*0.9
}

// Notice is the form-level message
type Notice struct {
	Kind    NoticeKind
	Message string
	ShownAt time.Time
}

// Page is an in-memory View. It keeps the annotation for each field, the success
// indicators, counters, the submit control and the notice, and renders to a PageState.
type Page struct {
	mu          sync.Mutex
	annotations map[string]string
	valid       map[string]bool
	counters    map[string]Counter
	busy        bool
	label       string
	busyLabel   string
	notice      *Notice
	noticeTTL   time.Duration
	now         func() time.Time
}

type PageOption func(*Page)

// WithNoticeTTL hides the notice after d. Zero keeps it until cleared.
func WithNoticeTTL(d time.Duration) PageOption {
	return func(p *Page) { p.noticeTTL = d }
}

func WithClock(now func() time.Time) PageOption {
	return func(p *Page) { p.now = now }
}

func WithBusyLabel(label string) PageOption {
	return func(p *Page) { p.busyLabel = label }
}

// NewPage creates a page whose submit control reads label
func NewPage(label string, opts ...PageOption) *Page {
	p := &Page{
		annotations: make(map[string]string),
		valid:       make(map[string]bool),
		counters:    make(map[string]Counter),
		label:       label,
		busyLabel:   "Sending...",
		noticeTTL:   5 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Page) ShowFieldError(field, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.valid, field)
	if _, exists := p.annotations[field]; exists {
		return
	}
	p.annotations[field] = message
}

func (p *Page) ClearFieldError(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.annotations, field)
}

func (p *Page) MarkFieldValid(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.annotations, field)
	p.valid[field] = true
}

func (p *Page) ResetField(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.annotations, field)
	delete(p.valid, field)
}

func (p *Page) SetCounter(field string, length, limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counters[field] = Counter{Length: length, Max: limit}
}

func (p *Page) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = busy
}

func (p *Page) ShowNotice(kind NoticeKind, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notice = &Notice{Kind: kind, Message: message, ShownAt: p.now()}
}

func (p *Page) ClearNotice() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notice = nil
}

// Annotation returns the error shown for field
func (p *Page) Annotation(field string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg, ok := p.annotations[field]
	return msg, ok
}

// AnnotationCount is the number of annotated fields
func (p *Page) AnnotationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.annotations)
}

func (p *Page) IsValid(field string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.valid[field]
}

func (p *Page) Counter(field string) (Counter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[field]
	return c, ok
}

func (p *Page) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// SubmitLabel is the text currently on the submit control
func (p *Page) SubmitLabel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitLabelLocked()
}

// Notice returns the visible notice, honouring the auto-hide delay
func (p *Page) Notice() (Notice, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.noticeLocked()
}

func (p *Page) submitLabelLocked() string {
	if p.busy {
		return p.busyLabel
	}
	return p.label
}

func (p *Page) noticeLocked() (Notice, bool) {
	if p.notice == nil {
		return Notice{}, false
	}
	if p.noticeTTL > 0 && p.now().Sub(p.notice.ShownAt) >= p.noticeTTL {
		return Notice{}, false
	}
	return *p.notice, true
}

// PageState is a render model of a Page
type PageState struct {
	Errors      map[string]string
	Valid       map[string]bool
	Counters    map[string]Counter
	Busy        bool
	SubmitLabel string
	Notice      *Notice
}

// Snapshot copies the current presentation state
func (p *Page) Snapshot() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := PageState{
		Errors:      make(map[string]string, len(p.annotations)),
		Valid:       make(map[string]bool, len(p.valid)),
		Counters:    make(map[string]Counter, len(p.counters)),
		Busy:        p.busy,
		SubmitLabel: p.submitLabelLocked(),
	}
	for k, v := range p.annotations {
		st.Errors[k] = v
	}
	for k, v := range p.valid {
		st.Valid[k] = v
	}
	for k, v := range p.counters {
		st.Counters[k] = v
	}
	if n, ok := p.noticeLocked(); ok {
		st.Notice = &n
	}
	return st
}
