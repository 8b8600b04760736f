package registry

import (
	stderrors "errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/logger"
)

// model mirrors the registry's observable state for one key.
type model struct {
	registered bool
	ready      bool
	queued     []int
}

// TestRegistryMatchesModel drives random operation sequences against the
// registry and a plain model, checking outcomes and waiter delivery.
func TestRegistryMatchesModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		active := []string{"a", "b", "c"}
		keys := append([]string{"x"}, active...)
		r := New(active, WithLogger(logger.Nop()))

		state := map[string]*model{}
		for _, k := range keys {
			state[k] = &model{}
		}
		configured := func(k string) bool { return k != "x" }

		fired := map[int]int{}
		var delivery []int
		expected := map[int]bool{}
		nextID := 0

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			key := rapid.SampledFrom(keys).Draw(rt, "key")
			m := state[key]

			switch rapid.SampledFrom([]string{"register", "get", "when_ready", "mark_ready"}).Draw(rt, "op") {
			case "register":
				err := r.Register(key, newService(key))
				if m.registered {
					if !stderrors.Is(err, ErrDuplicateService) {
						rt.Fatalf("register %s twice: got %v", key, err)
					}
					continue
				}
				if err != nil {
					rt.Fatalf("register %s: %v", key, err)
				}
				m.registered = true

			case "get":
				_, err := r.Get(key)
				switch {
				case !m.registered:
					if !stderrors.Is(err, ErrNotFound) {
						rt.Fatalf("get unregistered %s: got %v", key, err)
					}
				case !configured(key):
					if !stderrors.Is(err, ErrNotConfigured) {
						rt.Fatalf("get unconfigured %s: got %v", key, err)
					}
				case err != nil:
					rt.Fatalf("get %s: %v", key, err)
				}

			case "when_ready":
				id := nextID
				nextID++
				err := r.WhenReady(key, func(component.Service) {
					fired[id]++
					delivery = append(delivery, id)
				})
				if !configured(key) {
					if !stderrors.Is(err, ErrNotConfigured) {
						rt.Fatalf("when_ready unconfigured %s: got %v", key, err)
					}
					continue
				}
				if err != nil {
					rt.Fatalf("when_ready %s: %v", key, err)
				}
				expected[id] = true
				if m.ready {
					if fired[id] != 1 {
						rt.Fatalf("late waiter %d on %s did not fire synchronously", id, key)
					}
				} else {
					m.queued = append(m.queued, id)
				}

			case "mark_ready":
				start := len(delivery)
				err := r.MarkReady(key)
				switch {
				case !m.registered:
					if !stderrors.Is(err, ErrNotFound) {
						rt.Fatalf("mark_ready unregistered %s: got %v", key, err)
					}
				case m.ready:
					if !stderrors.Is(err, ErrAlreadyReady) {
						rt.Fatalf("mark_ready twice %s: got %v", key, err)
					}
					if len(delivery) != start {
						rt.Fatalf("second mark_ready on %s delivered waiters", key)
					}
				default:
					if err != nil {
						rt.Fatalf("mark_ready %s: %v", key, err)
					}
					got := delivery[start:]
					if len(got) != len(m.queued) {
						rt.Fatalf("mark_ready %s delivered %v, want %v", key, got, m.queued)
					}
					for j := range got {
						if got[j] != m.queued[j] {
							rt.Fatalf("mark_ready %s delivered %v, want %v", key, got, m.queued)
						}
					}
					m.ready = true
					m.queued = nil
				}
			}

			if r.IsReady(key) != m.ready {
				rt.Fatalf("%s readiness: registry %v, model %v", key, r.IsReady(key), m.ready)
			}
			if r.Pending(key) != len(m.queued) {
				rt.Fatalf("%s pending: registry %d, model %d", key, r.Pending(key), len(m.queued))
			}
		}

		for id, n := range fired {
			if !expected[id] {
				rt.Fatalf("waiter %d fired but was rejected", id)
			}
			if n != 1 {
				rt.Fatalf("waiter %d fired %d times", id, n)
			}
		}
	})
}

// TestNotReadyTracksRunningOrder checks that NotReady is always the running
// list filtered to keys not yet ready, preserving order.
func TestNotReadyTracksRunningOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		running := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 1, 8, rapid.ID[string]).Draw(rt, "running")
		r := New(running, WithLogger(logger.Nop()))

		ready := map[string]bool{}
		for _, key := range running {
			if rapid.Bool().Draw(rt, "register_"+key) {
				r.Register(key, newService(key))
				if rapid.Bool().Draw(rt, "ready_"+key) {
					r.MarkReady(key)
					ready[key] = true
				}
			}
		}

		var want []string
		for _, key := range running {
			if !ready[key] {
				want = append(want, key)
			}
		}
		got := r.NotReady()
		if len(got) != len(want) {
			rt.Fatalf("NotReady() = %v, want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				rt.Fatalf("NotReady() = %v, want %v", got, want)
			}
		}
		if r.AllReady() != (len(want) == 0) {
			rt.Fatalf("AllReady() inconsistent with NotReady() %v", got)
		}
	})
}
