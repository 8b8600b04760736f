package registry

import (
	"context"

	"github.com/kbukum/servicecore/component"
)

// Await blocks until the service under key is ready or ctx is done. It is
// meant for goroutines that live outside the callback flow, such as tests
// or background workers; the waiter it queues stays queued after a
// cancellation and is simply ignored when it fires.
func (r *Registry) Await(ctx context.Context, key string) (component.Service, error) {
	ch := make(chan component.Service, 1)
	if err := r.WhenReady(key, func(svc component.Service) { ch <- svc }); err != nil {
		return nil, err
	}

	select {
	case svc := <-ch:
		return svc, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
