package demo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/logger"
)

var (
	_ component.Service   = (*Timer)(nil)
	_ component.Component = (*Timer)(nil)
)

// Timer is a hosted service that ticks on its own goroutine. It becomes
// ready on the first tick.
type Timer struct {
	component.Readiness

	interval time.Duration
	log      *logger.Logger
	ticks    atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTimer creates a timer ticking every interval.
func NewTimer(interval time.Duration, log *logger.Logger) *Timer {
	if log == nil {
		log = logger.Nop()
	}
	return &Timer{interval: interval, log: log.WithComponent("timer")}
}

// Name returns the component name.
func (t *Timer) Name() string { return "timer" }

// Start launches the tick loop. The loop outlives ctx and ends on Stop.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(loopCtx, t.done)
	return nil
}

func (t *Timer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.ticks.Add(1) == 1 {
				t.log.Debug("First tick")
				_ = t.Complete()
			}
		}
	}
}

// Stop ends the tick loop and waits for it to exit.
func (t *Timer) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ticks returns how many ticks have fired.
func (t *Timer) Ticks() int64 { return t.ticks.Load() }

// Health is healthy while the loop runs.
func (t *Timer) Health(ctx context.Context) component.Health {
	t.mu.Lock()
	running := t.cancel != nil
	t.mu.Unlock()
	if !running {
		return component.Health{Name: t.Name(), Status: component.StatusUnhealthy, Message: "not running"}
	}
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}
