package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/registry"
)

// Event types streamed on GET /events.
const (
	EventConnected    = "connected"
	EventRegistered   = "registered"
	EventWaiterQueued = "waiter_queued"
	EventReady        = "ready"
)

const clientBuffer = 256

// Event is one registry lifecycle change.
type Event struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Time      time.Time `json:"time"`
	LatencyMS int64     `json:"latency_ms,omitempty"`
	Drained   int       `json:"drained,omitempty"`
}

type subscriber struct {
	id      string
	pattern string
	events  chan Event
}

// send drops the event when the subscriber is not keeping up.
func (s *subscriber) send(e Event) bool {
	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

// EventHub fans registry events out to stream subscribers. It implements
// registry.Observer and component.Component; Start runs the dispatch loop.
type EventHub struct {
	log *logger.Logger
	now func() time.Time

	clients    map[string]*subscriber
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan Event
	done       chan struct{}

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var (
	_ registry.Observer     = (*EventHub)(nil)
	_ component.Component   = (*EventHub)(nil)
	_ component.Describable = (*EventHub)(nil)
)

// NewEventHub creates a hub. Call Start before serving streams.
func NewEventHub(log *logger.Logger) *EventHub {
	if log == nil {
		log = logger.Nop()
	}
	return &EventHub{
		log:        log.WithComponent("status-events"),
		now:        time.Now,
		clients:    make(map[string]*subscriber),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan Event, clientBuffer),
		done:       make(chan struct{}),
	}
}

// Name returns the component name.
func (h *EventHub) Name() string { return "status-events" }

// Start launches the dispatch loop.
func (h *EventHub) Start(context.Context) error {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.run()
	}()
	return nil
}

// Stop disconnects every subscriber and waits for the loop to exit. It is
// safe to call more than once.
func (h *EventHub) Stop(context.Context) error {
	h.mu.Lock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
	h.mu.Unlock()
	h.wg.Wait()
	return nil
}

// Health reports the subscriber count.
func (h *EventHub) Health(context.Context) component.Health {
	return component.Health{
		Name:    h.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", h.ClientCount()),
	}
}

// Describe returns the summary line for the bootstrap display.
func (h *EventHub) Describe() component.Description {
	return component.Description{
		Name:    "Registry Events",
		Type:    "sse",
		Details: "GET /events",
	}
}

// ClientCount returns the number of connected subscribers.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case s := <-h.register:
			h.mu.Lock()
			h.clients[s.id] = s
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Event subscriber connected", logger.Fields("client_id", s.id, "pattern", s.pattern, "total_clients", total))

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[s.id]; ok {
				delete(h.clients, s.id)
				close(s.events)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Event subscriber disconnected", logger.Fields("client_id", s.id, "total_clients", total))

		case e := <-h.broadcast:
			h.dispatch(e)
		}
	}
}

func (h *EventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.clients {
		close(s.events)
		delete(h.clients, id)
	}
}

// dispatch delivers e to every subscriber whose pattern matches its key.
func (h *EventHub) dispatch(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.clients {
		if ok, _ := path.Match(s.pattern, e.Key); !ok {
			continue
		}
		if !s.send(e) {
			h.log.Warn("Event subscriber too slow, dropping event", logger.Fields("client_id", s.id, "event", e.Type))
		}
	}
}

// subscribe registers a subscriber with the loop. It returns false once the
// hub has stopped.
func (h *EventHub) subscribe(s *subscriber) bool {
	select {
	case h.register <- s:
		return true
	case <-h.done:
		return false
	}
}

func (h *EventHub) unsubscribe(s *subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// publish never blocks the caller. Registry callbacks run on service
// goroutines and must not stall behind a slow stream.
func (h *EventHub) publish(e Event) {
	e.Time = h.now()
	select {
	case h.broadcast <- e:
	case <-h.done:
	default:
		h.log.Warn("Event hub backlog full, dropping event", logger.Fields("event", e.Type, logger.FieldServiceKey, e.Key))
	}
}

// ServiceRegistered implements registry.Observer.
func (h *EventHub) ServiceRegistered(key string) {
	h.publish(Event{Type: EventRegistered, Key: key})
}

// WaiterQueued implements registry.Observer.
func (h *EventHub) WaiterQueued(key string) {
	h.publish(Event{Type: EventWaiterQueued, Key: key})
}

// ServiceReady implements registry.Observer.
func (h *EventHub) ServiceReady(key string, latency time.Duration, drained int) {
	h.publish(Event{Type: EventReady, Key: key, LatencyMS: latency.Milliseconds(), Drained: drained})
}

func marshalJSON(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
