package statusapi_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/statusapi"
)

func newStreamingServer(t *testing.T, keys ...string) (*registry.Registry, *statusapi.EventHub, *httptest.Server) {
	t.Helper()
	hub := statusapi.NewEventHub(logger.Nop())
	if err := hub.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { hub.Stop(context.Background()) })

	reg := registry.New(keys, registry.WithLogger(logger.Nop()), registry.WithObserver(hub))
	cfg := statusapi.Config{}
	cfg.ApplyDefaults()
	srv := statusapi.NewServer(cfg, logger.Nop())
	statusapi.NewHandlers(reg, nil, statusapi.Identity{Service: "servicecore"}).WithEvents(hub).Mount(srv.Engine())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return reg, hub, ts
}

func openStream(t *testing.T, ctx context.Context, url string) *bufio.Reader {
	t.Helper()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
	return bufio.NewReader(resp.Body)
}

// readFrame returns the next event name and data payload, skipping comments.
func readFrame(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && event != "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEventsStream(t *testing.T) {
	reg, hub, ts := newStreamingServer(t, "settings", "timer")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := openStream(t, ctx, ts.URL+"/events?service=tim*")
	event, data := readFrame(t, r)
	if event != statusapi.EventConnected || !strings.Contains(data, `"pattern":"tim*"`) {
		t.Fatalf("expected connected frame, got %s %s", event, data)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}

	reg.Register("settings", &service{})
	reg.Register("timer", &service{})
	reg.WhenReady("timer", func(component.Service) {})
	reg.MarkReady("timer")

	want := []string{statusapi.EventRegistered, statusapi.EventWaiterQueued, statusapi.EventReady}
	for _, w := range want {
		event, data := readFrame(t, r)
		if event != w {
			t.Fatalf("expected %s, got %s (%s)", w, event, data)
		}
		var e statusapi.Event
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			t.Fatalf("invalid event payload %q: %v", data, err)
		}
		if e.Key != "timer" || e.Type != w {
			t.Errorf("unexpected event %+v", e)
		}
		if w == statusapi.EventReady && e.Drained != 1 {
			t.Errorf("expected 1 drained waiter, got %d", e.Drained)
		}
	}
}

func TestEventsRejectsBadPattern(t *testing.T) {
	_, _, ts := newStreamingServer(t, "timer")

	resp, err := http.Get(ts.URL + "/events?service=%5B")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEventHubStopEndsStreams(t *testing.T) {
	_, hub, ts := newStreamingServer(t, "timer")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := openStream(t, ctx, ts.URL+"/events")
	readFrame(t, r)

	hub.Stop(context.Background())
	if _, err := io.ReadAll(r); err != nil {
		t.Errorf("expected a clean end of stream, got %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected no clients after stop, got %d", hub.ClientCount())
	}
}

func TestEventsNotMountedWithoutHub(t *testing.T) {
	reg := registry.New([]string{"timer"}, registry.WithLogger(logger.Nop()))
	srv := newServer(t, reg, nil)
	if rr := get(t, srv.Handler(), "/events"); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestEventHubPublishNeverBlocks(t *testing.T) {
	hub := statusapi.NewEventHub(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			hub.ServiceRegistered("timer")
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked without a running hub")
	}
}

func TestEventHubComponent(t *testing.T) {
	hub := statusapi.NewEventHub(logger.Nop())
	if hub.Name() != "status-events" {
		t.Errorf("unexpected name %q", hub.Name())
	}
	h := hub.Health(context.Background())
	if h.Status != component.StatusHealthy || h.Message != "0 clients connected" {
		t.Errorf("unexpected health %+v", h)
	}
	if d := hub.Describe(); d.Type != "sse" || d.Details != "GET /events" {
		t.Errorf("unexpected description %+v", d)
	}

	hub.Start(context.Background())
	hub.Stop(context.Background())
	if err := hub.Stop(context.Background()); err != nil {
		t.Errorf("expected second Stop to be a no-op, got %v", err)
	}
}
