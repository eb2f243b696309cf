package contactform

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ratio-analytics-website/internal/domain"
	"ratio-analytics-website/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateTransport holds every call until the test releases it
type gateTransport struct {
	calls    atomic.Int32
	release  chan error
	payloads chan domain.FormPayload
}

func newGateTransport() *gateTransport {
	return &gateTransport{
		release:  make(chan error, 1),
		payloads: make(chan domain.FormPayload, 4),
	}
}

func (g *gateTransport) Send(ctx context.Context, payload domain.FormPayload) error {
	g.calls.Add(1)
	g.payloads <- payload
	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type recorder struct {
	mu    sync.Mutex
	moves []domain.SubmissionState
}

func (r *recorder) observe(from, to domain.SubmissionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.moves) == 0 {
		r.moves = append(r.moves, from)
	}
	r.moves = append(r.moves, to)
}

func (r *recorder) states() []domain.SubmissionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SubmissionState, len(r.moves))
	copy(out, r.moves)
	return out
}

func newContactForm(t *testing.T, transport Transport, opts ...Option) (*Controller, *Page) {
	t.Helper()
	c, err := New(ContactFields(500), transport, opts...)
	require.NoError(t, err)
	page := NewPage("Send message")
	require.NoError(t, c.Attach(page))
	t.Cleanup(c.Detach)
	return c, page
}

func fillValid(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.Input("name", "Ana Núñez"))
	require.NoError(t, c.Input("email", "ana@ratio.co"))
	require.NoError(t, c.Input("service", "consulting"))
	require.NoError(t, c.Input("message", "We need a sales dashboard."))
}

func waitOutcome(t *testing.T, out *Outcome) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	select {
	case <-out.Done():
		return out.Err()
	case <-ctx.Done():
		t.Fatal("outcome did not resolve")
		return nil
	}
}

func TestSubmitSuccessLifecycle(t *testing.T) {
	rec := &recorder{}
	gate := newGateTransport()
	c, page := newContactForm(t, gate, WithObserver(rec.observe))
	fillValid(t, c)
	require.NoError(t, c.Input("phone", "(123) 456-7890"))

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)

	payload := <-gate.payloads
	assert.Equal(t, domain.StatePending, c.State())
	assert.True(t, page.Busy())
	assert.Equal(t, "Sending...", page.SubmitLabel())

	names := make([]string, 0, payload.Len())
	for _, e := range payload.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"name", "email", "phone", "company", "service", "message"}, names)
	email, _ := payload.Get("email")
	assert.Equal(t, "ana@ratio.co", email)

	gate.release <- nil
	require.NoError(t, waitOutcome(t, out))
	assert.True(t, out.Succeeded())

	assert.Equal(t, []domain.SubmissionState{
		domain.StateIdle, domain.StateValidating, domain.StatePending, domain.StateSucceeded, domain.StateIdle,
	}, rec.states())
	assert.Equal(t, domain.StateIdle, c.State())

	for _, f := range c.Fields() {
		assert.Empty(t, f.Value, f.Name)
		assert.Equal(t, domain.Unvalidated, f.Validity, f.Name)
		assert.False(t, page.IsValid(f.Name), f.Name)
	}
	assert.False(t, page.Busy())
	assert.Equal(t, "Send message", page.SubmitLabel())

	notice, ok := page.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeSuccess, notice.Kind)

	counter, ok := page.Counter("message")
	require.True(t, ok)
	assert.Equal(t, 0, counter.Length)
}

func TestSubmitFailurePreservesValues(t *testing.T) {
	rec := &recorder{}
	c, page := newContactForm(t, TransportFunc(func(ctx context.Context, p domain.FormPayload) error {
		return errors.New("backend down")
	}), WithObserver(rec.observe))
	fillValid(t, c)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	err = waitOutcome(t, out)
	require.Error(t, err)
	var te *domain.TransportError
	assert.ErrorAs(t, err, &te)
	assert.False(t, out.Succeeded())

	assert.Equal(t, []domain.SubmissionState{
		domain.StateIdle, domain.StateValidating, domain.StatePending, domain.StateFailed, domain.StateIdle,
	}, rec.states())

	f, _ := c.Field("message")
	assert.Equal(t, "We need a sales dashboard.", f.Value)
	assert.False(t, page.Busy())
	assert.Equal(t, "Send message", page.SubmitLabel())
	notice, ok := page.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeError, notice.Kind)

	// the next submit starts over
	out, err = c.Submit(context.Background())
	require.NoError(t, err)
	require.Error(t, waitOutcome(t, out))
}

func TestSubmitInvalidFormAbortsWithoutTransport(t *testing.T) {
	gate := newGateTransport()
	rec := &recorder{}
	c, page := newContactForm(t, gate, WithObserver(rec.observe))
	require.NoError(t, c.Input("name", "R2D2"))
	require.NoError(t, c.Input("email", "not-an-email"))

	out, err := c.Submit(context.Background())
	assert.Nil(t, out)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, map[string]string{
		"name":    validation.MsgNameLetters,
		"email":   validation.MsgInvalidEmail,
		"service": validation.MsgRequired,
		"message": validation.MsgRequired,
	}, ve.Fields)

	assert.Equal(t, int32(0), gate.calls.Load())
	assert.Equal(t, domain.StateIdle, c.State())
	assert.Equal(t, []domain.SubmissionState{domain.StateIdle, domain.StateValidating, domain.StateIdle}, rec.states())
	assert.Equal(t, 4, page.AnnotationCount())
	assert.False(t, page.Busy())
}

func TestOptionalFieldsDoNotBlockSubmit(t *testing.T) {
	c, _ := newContactForm(t, TransportFunc(func(ctx context.Context, p domain.FormPayload) error { return nil }))
	fillValid(t, c)
	require.NoError(t, c.Input("phone", "call me maybe"))

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, out))
}

func TestFormWithoutRequiredFieldsIsVacuouslyValid(t *testing.T) {
	var sent atomic.Int32
	c, err := New([]FieldSpec{{Name: "company", Kind: domain.KindText}}, TransportFunc(func(ctx context.Context, p domain.FormPayload) error {
		sent.Add(1)
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, c.Attach(NewPage("Send")))
	defer c.Detach()

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, out))
	assert.Equal(t, int32(1), sent.Load())
}

func TestDecoyDropsSubmissionSilently(t *testing.T) {
	gate := newGateTransport()
	rec := &recorder{}
	c, page := newContactForm(t, gate, WithObserver(rec.observe))
	require.NoError(t, c.Input("email", "nope"))
	c.SetDecoy("http://spam.example")

	out, err := c.Submit(context.Background())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrSpamDetected)

	assert.Equal(t, int32(0), gate.calls.Load())
	assert.Empty(t, rec.states())
	assert.Equal(t, domain.StateIdle, c.State())
	assert.Equal(t, 0, page.AnnotationCount())
	_, shown := page.Notice()
	assert.False(t, shown)
}

func TestSubmitWhilePendingIsIgnored(t *testing.T) {
	gate := newGateTransport()
	c, _ := newContactForm(t, gate)
	fillValid(t, c)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	<-gate.payloads

	for i := 0; i < 3; i++ {
		again, err := c.Submit(context.Background())
		assert.Nil(t, again)
		assert.ErrorIs(t, err, ErrSubmissionInFlight)
	}
	assert.Equal(t, int32(1), gate.calls.Load())
	assert.Equal(t, domain.StatePending, c.State())

	gate.release <- nil
	require.NoError(t, waitOutcome(t, out))
	assert.Equal(t, int32(1), gate.calls.Load())
}

func TestConcurrentSubmitsSendOnce(t *testing.T) {
	var sent atomic.Int32
	release := make(chan struct{})
	c, _ := newContactForm(t, TransportFunc(func(ctx context.Context, p domain.FormPayload) error {
		sent.Add(1)
		<-release
		return nil
	}))
	fillValid(t, c)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes []*Outcome
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if out, err := c.Submit(context.Background()); err == nil {
				mu.Lock()
				outcomes = append(outcomes, out)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(release)

	require.Len(t, outcomes, 1)
	require.NoError(t, waitOutcome(t, outcomes[0]))
	assert.Equal(t, int32(1), sent.Load())
}

func TestBlurTwiceKeepsOneAnnotation(t *testing.T) {
	c, page := newContactForm(t, newGateTransport())
	require.NoError(t, c.Input("email", "abc"))

	for i := 0; i < 2; i++ {
		v, err := c.Blur("email")
		require.NoError(t, err)
		assert.False(t, v.Valid)
	}
	assert.Equal(t, 1, page.AnnotationCount())
	msg, _ := page.Annotation("email")
	assert.Equal(t, validation.MsgInvalidEmail, msg)

	f, _ := c.Field("email")
	assert.Equal(t, domain.Invalid, f.Validity)
	assert.Equal(t, validation.MsgInvalidEmail, f.ErrorMessage)
}

func TestBlurUpdatesMessageAfterCorrection(t *testing.T) {
	c, page := newContactForm(t, newGateTransport())

	_, err := c.Blur("email")
	require.NoError(t, err)
	msg, _ := page.Annotation("email")
	assert.Equal(t, validation.MsgRequired, msg)

	require.NoError(t, c.Input("email", "a@b.co"))
	v, err := c.Blur("email")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 0, page.AnnotationCount())
	assert.True(t, page.IsValid("email"))
}

func TestInputClearsErrorWithoutRevalidating(t *testing.T) {
	c, page := newContactForm(t, newGateTransport())
	require.NoError(t, c.Input("message", "short"))
	_, err := c.Blur("message")
	require.NoError(t, err)
	require.Equal(t, 1, page.AnnotationCount())

	require.NoError(t, c.Input("message", "still"))
	f, _ := c.Field("message")
	assert.Equal(t, domain.Unvalidated, f.Validity)
	assert.Empty(t, f.ErrorMessage)
	assert.Equal(t, 0, page.AnnotationCount())
	assert.False(t, page.IsValid("message"))

	counter, _ := page.Counter("message")
	assert.Equal(t, Counter{Length: 5, Max: 500}, counter)
}

func TestErrorsAreIndependentPerField(t *testing.T) {
	c, page := newContactForm(t, newGateTransport())
	_, _ = c.Blur("name")
	_, _ = c.Blur("email")
	require.Equal(t, 2, page.AnnotationCount())

	require.NoError(t, c.Input("name", "Ana"))
	_, _ = c.Blur("name")

	_, nameErr := page.Annotation("name")
	_, emailErr := page.Annotation("email")
	assert.False(t, nameErr)
	assert.True(t, emailErr)
}

func TestPhoneMask(t *testing.T) {
	c, _ := newContactForm(t, newGateTransport(), WithPhoneMask())
	require.NoError(t, c.Input("phone", "1234567890"))

	f, _ := c.Field("phone")
	assert.Equal(t, "(123) 456-7890", f.Value)
}

func TestTimeoutResolvesAsFailed(t *testing.T) {
	rec := &recorder{}
	c, page := newContactForm(t, newGateTransport(), WithTimeout(20*time.Millisecond), WithObserver(rec.observe))
	fillValid(t, c)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	err = waitOutcome(t, out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, rec.states(), domain.StateFailed)
	assert.Equal(t, domain.StateIdle, c.State())
	assert.False(t, page.Busy())

	f, _ := c.Field("name")
	assert.Equal(t, "Ana Núñez", f.Value)
}

func TestTimeoutWinsOverTransportIgnoringContext(t *testing.T) {
	stuck := make(chan struct{})
	returned := make(chan struct{})
	c, page := newContactForm(t, TransportFunc(func(ctx context.Context, p domain.FormPayload) error {
		defer close(returned)
		<-stuck // never looks at ctx
		return nil
	}), WithTimeout(20*time.Millisecond))
	fillValid(t, c)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	err = waitOutcome(t, out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.StateIdle, c.State())
	assert.False(t, page.Busy())
	n, ok := page.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeError, n.Kind)

	// Detach returns even though the transport call is still stuck
	detached := make(chan struct{})
	go func() {
		c.Detach()
		close(detached)
	}()
	select {
	case <-detached:
	case <-time.After(time.Second):
		t.Fatal("Detach blocked on the stuck transport")
	}

	close(stuck)
	<-returned
}

func TestDetachCancelsInFlightSubmission(t *testing.T) {
	gate := newGateTransport()
	c, err := New(ContactFields(500), gate)
	require.NoError(t, err)
	page := NewPage("Send")
	require.NoError(t, c.Attach(page))
	fillValid(t, c)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	<-gate.payloads

	c.Detach()

	select {
	case <-out.Done():
	default:
		t.Fatal("detach returned before the submission settled")
	}
	assert.ErrorIs(t, out.Err(), context.Canceled)
	assert.Equal(t, domain.StateIdle, c.State())
	// the view was released before the failure landed
	assert.True(t, page.Busy())

	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrDetached)
	assert.ErrorIs(t, c.Input("name", "x"), ErrDetached)
}

func TestAttachTwice(t *testing.T) {
	c, _ := newContactForm(t, newGateTransport())
	assert.ErrorIs(t, c.Attach(NewPage("Send")), ErrAlreadyAttached)
}

func TestUnknownField(t *testing.T) {
	c, _ := newContactForm(t, newGateTransport())
	assert.ErrorIs(t, c.Input("fax", "1"), ErrUnknownField)
	_, err := c.Blur("fax")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestNewRejectsBadSpecs(t *testing.T) {
	noop := TransportFunc(func(ctx context.Context, p domain.FormPayload) error { return nil })

	_, err := New([]FieldSpec{{Name: "a", Kind: domain.KindText}, {Name: "a", Kind: domain.KindText}}, noop)
	assert.Error(t, err)

	_, err = New([]FieldSpec{{Name: DecoyField, Kind: domain.KindText}}, noop)
	assert.Error(t, err)

	_, err = New([]FieldSpec{{Name: "a", Kind: "checkbox"}}, noop)
	assert.Error(t, err)

	_, err = New(ContactFields(500), nil)
	assert.Error(t, err)
}

func TestOutcomeResolvesOnce(t *testing.T) {
	o := newOutcome()
	assert.Nil(t, o.Err())
	assert.False(t, o.Succeeded())

	assert.True(t, o.resolve(nil))
	assert.False(t, o.resolve(errors.New("late")))
	assert.NoError(t, o.Wait(context.Background()))
	assert.True(t, o.Succeeded())
}
