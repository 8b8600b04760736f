package component

import (
	"fmt"
	"sync"
)

// Readiness is a single-fire init-completion signal implementing Service.
// Embed it in a concrete service and call Complete once initialization
// finishes.
//
//	type Timer struct {
//	    component.Readiness
//	}
type Readiness struct {
	mu          sync.Mutex
	ready       bool
	subscribers []func()
}

var _ Service = (*Readiness)(nil)

// IsReady reports whether Complete has been called.
func (r *Readiness) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// OnInitCompleted queues fn until Complete, or runs it now if already complete.
func (r *Readiness) OnInitCompleted(fn func()) {
	r.mu.Lock()
	if !r.ready {
		r.subscribers = append(r.subscribers, fn)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	fn()
}

// Complete marks initialization as finished and notifies subscribers in
// subscription order. Subscribers run without the lock held, so they may
// call back into the service. A second call returns an error and notifies
// nobody.
func (r *Readiness) Complete() error {
	r.mu.Lock()
	if r.ready {
		r.mu.Unlock()
		return fmt.Errorf("initialization already completed")
	}
	r.ready = true
	subscribers := r.subscribers
	r.subscribers = nil
	r.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
	return nil
}
