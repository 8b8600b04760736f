package registry

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/logger"
)

// Sentinel errors for errors.Is matching. Returned errors carry the service
// key in their details; these only carry the code.
var (
	ErrDuplicateService = errors.New(errors.ErrCodeServiceDuplicate, "service already registered", http.StatusConflict)
	ErrNotFound         = errors.New(errors.ErrCodeServiceNotFound, "service not registered", http.StatusNotFound)
	ErrNotConfigured    = errors.New(errors.ErrCodeServiceNotConfigured, "service not configured", http.StatusNotFound)
	ErrAlreadyReady     = errors.New(errors.ErrCodeServiceAlreadyReady, "service already ready", http.StatusConflict)
)

// Waiter is a callback deferred until its target service becomes ready.
type Waiter func(svc component.Service)

// Entry is a point-in-time view of one registered or configured service.
type Entry struct {
	Key          string            `json:"key"`
	Instance     component.Service `json:"-"`
	Registered   bool              `json:"registered"`
	Configured   bool              `json:"configured"`
	Ready        bool              `json:"ready"`
	Waiters      int               `json:"pending_waiters"`
	RegisteredAt time.Time         `json:"registered_at,omitempty"`
	ReadyAt      time.Time         `json:"ready_at,omitempty"`
}

type entry struct {
	instance     component.Service
	ready        bool
	registeredAt time.Time
	readyAt      time.Time
}

// Registry is the service registry. It is safe for concurrent use; waiters
// always run with the internal lock released, so they may call back into
// the registry.
type Registry struct {
	mu      sync.Mutex
	running []string
	active  map[string]struct{}
	entries map[string]*entry
	waiters map[string][]Waiter

	log      *logger.Logger
	observer Observer
	now      func() time.Time
}

// New creates a registry whose active set is running, in order. Repeated
// keys are kept once.
func New(running []string, opts ...Option) *Registry {
	r := &Registry{
		running:  make([]string, 0, len(running)),
		active:   make(map[string]struct{}, len(running)),
		entries:  make(map[string]*entry),
		waiters:  make(map[string][]Waiter),
		log:      logger.Get("registry"),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, key := range running {
		if _, dup := r.active[key]; dup {
			continue
		}
		r.active[key] = struct{}{}
		r.running = append(r.running, key)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewFromConfig creates a registry from the registry configuration section.
func NewFromConfig(cfg Config, opts ...Option) *Registry {
	return New(cfg.RunningServices, opts...)
}

// Register inserts svc under key. A second registration of the same key
// fails with ErrDuplicateService and leaves the original entry untouched.
// Registering a key outside the active set is allowed, but that service
// stays invisible to Get, TryGet and WhenReady.
func (r *Registry) Register(key string, svc component.Service) error {
	if svc == nil {
		return errors.InvalidInput("service", "instance for "+key+" is nil")
	}

	r.mu.Lock()
	if _, exists := r.entries[key]; exists {
		r.mu.Unlock()
		return errors.DuplicateService(key)
	}
	r.entries[key] = &entry{instance: svc, registeredAt: r.now()}
	_, configured := r.active[key]
	r.mu.Unlock()

	fields := logger.ServiceFields(key)
	if !configured {
		fields["configured"] = false
		r.log.Warn("Service started outside running services", fields)
	} else {
		r.log.Info("Service started", fields)
	}
	r.observer.ServiceRegistered(key)
	return nil
}

// Get returns the service registered under key. It fails with ErrNotFound
// if the key was never registered and ErrNotConfigured if it was registered
// but is not part of the active set. Readiness is not checked.
func (r *Registry) Get(key string) (component.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, errors.ServiceNotFound(key)
	}
	if _, configured := r.active[key]; !configured {
		return nil, errors.ServiceNotConfigured(key)
	}
	return e.instance, nil
}

// TryGet is Get without the error: it reports false whenever Get would fail.
func (r *Registry) TryGet(key string) (component.Service, bool) {
	svc, err := r.Get(key)
	if err != nil {
		return nil, false
	}
	return svc, true
}

// WhenReady arranges for fn to run once the service under key is ready.
// If it already is, fn runs synchronously before WhenReady returns.
// Otherwise fn is queued and runs during MarkReady, after every waiter
// queued before it. A configured key that has not been registered yet is
// queued too. Keys outside the active set fail with ErrNotConfigured.
func (r *Registry) WhenReady(key string, fn Waiter) error {
	if fn == nil {
		return errors.InvalidInput("callback", "waiter for "+key+" is nil")
	}

	r.mu.Lock()
	if _, configured := r.active[key]; !configured {
		r.mu.Unlock()
		return errors.ServiceNotConfigured(key)
	}
	if e, ok := r.entries[key]; ok && e.ready {
		svc := e.instance
		r.mu.Unlock()
		fn(svc)
		return nil
	}
	r.waiters[key] = append(r.waiters[key], fn)
	pending := len(r.waiters[key])
	r.mu.Unlock()

	r.log.Debug("Waiter queued", logger.Fields(
		logger.FieldServiceKey, key,
		logger.FieldWaiters, pending,
	))
	r.observer.WaiterQueued(key)
	return nil
}

// MarkReady flips the service under key to ready and then runs every queued
// waiter once, in FIFO order. The flip and the detachment of the queue are
// atomic: a WhenReady issued while waiters are still running sees the
// service as ready and fires immediately. Fails with ErrNotFound for
// unregistered keys and ErrAlreadyReady on the second call.
func (r *Registry) MarkReady(key string) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return errors.ServiceNotFound(key)
	}
	if e.ready {
		r.mu.Unlock()
		return errors.ServiceAlreadyReady(key)
	}
	e.ready = true
	e.readyAt = r.now()
	latency := e.readyAt.Sub(e.registeredAt)
	queued := r.waiters[key]
	delete(r.waiters, key)
	svc := e.instance
	r.mu.Unlock()

	r.log.Info("Service ready", logger.Fields(
		logger.FieldServiceKey, key,
		logger.FieldWaiters, len(queued),
		logger.FieldDuration, latency.Milliseconds(),
	))
	r.observer.ServiceReady(key, latency, len(queued))

	for _, fn := range queued {
		fn(svc)
	}
	return nil
}

// IsReady reports whether key is registered and ready.
func (r *Registry) IsReady(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	return ok && e.ready
}

// IsConfigured reports whether key belongs to the active set.
func (r *Registry) IsConfigured(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[key]
	return ok
}

// Pending returns the number of waiters queued for key.
func (r *Registry) Pending(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters[key])
}

// Running returns the active set in configured order.
func (r *Registry) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.running))
	copy(out, r.running)
	return out
}

// AllReady reports whether every configured service is registered and ready.
func (r *Registry) AllReady() bool {
	return len(r.NotReady()) == 0
}

// NotReady returns the configured keys that are unregistered or not ready,
// in configured order.
func (r *Registry) NotReady() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, key := range r.running {
		if e, ok := r.entries[key]; !ok || !e.ready {
			out = append(out, key)
		}
	}
	return out
}

// Entries returns a snapshot of every configured key in configured order,
// followed by registered keys outside the active set sorted by key.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.entries)+len(r.running))
	for _, key := range r.running {
		out = append(out, r.snapshotLocked(key, true))
	}

	var extra []string
	for key := range r.entries {
		if _, configured := r.active[key]; !configured {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		out = append(out, r.snapshotLocked(key, false))
	}
	return out
}

// Entry returns the snapshot for a single key. Unknown, unconfigured keys
// report false.
func (r *Registry) Entry(key string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, configured := r.active[key]
	_, registered := r.entries[key]
	if !configured && !registered {
		return Entry{}, false
	}
	return r.snapshotLocked(key, configured), true
}

func (r *Registry) snapshotLocked(key string, configured bool) Entry {
	snap := Entry{
		Key:        key,
		Configured: configured,
		Waiters:    len(r.waiters[key]),
	}
	if e, ok := r.entries[key]; ok {
		snap.Registered = true
		snap.Instance = e.instance
		snap.Ready = e.ready
		snap.RegisteredAt = e.registeredAt
		snap.ReadyAt = e.readyAt
	}
	return snap
}
