package contactform

import (
	"context"
	"sync"
)

// Outcome is the single resolution of one outbound submission: it either succeeds
// (nil error) or fails. Cancellation and timeouts resolve it as a failure.
type Outcome struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newOutcome() *Outcome {
	return &Outcome{done: make(chan struct{})}
}

// resolve records err; only the first call has an effect
func (o *Outcome) resolve(err error) bool {
	resolved := false
	o.once.Do(func() {
		o.err = err
		close(o.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the outcome resolves
func (o *Outcome) Done() <-chan struct{} {
	return o.done
}

// Err returns the failure cause. Only meaningful after Done is closed.
func (o *Outcome) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the outcome resolves or ctx ends
func (o *Outcome) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Succeeded reports a resolved, successful submission
func (o *Outcome) Succeeded() bool {
	select {
	case <-o.done:
		return o.err == nil
	default:
		return false
	}
}
