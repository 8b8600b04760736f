package registry

import (
	"fmt"
	"reflect"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/logger"
)

// KeyFor derives a service key from a type name, so a service can be
// addressed by its type instead of a hand-written string:
//
//	registry.KeyFor[*Timer]() // "Timer"
func KeyFor[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Resolve returns the service under key as T.
//
//	timer, err := registry.Resolve[*Timer](reg, "timer")
func Resolve[T any](r *Registry, key string) (T, error) {
	var zero T
	svc, err := r.Get(key)
	if err != nil {
		return zero, err
	}
	result, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("registry: service %s is %T, expected %T", key, svc, zero)
	}
	return result, nil
}

// TryResolve returns the service under key as T, or false when the key is
// unknown, unconfigured, or holds a different type.
func TryResolve[T any](r *Registry, key string) (T, bool) {
	result, err := Resolve[T](r, key)
	return result, err == nil
}

// MustResolve is Resolve that panics on error. Use it on startup paths
// where a missing service is a configuration bug.
func MustResolve[T any](r *Registry, key string) T {
	result, err := Resolve[T](r, key)
	if err != nil {
		panic(fmt.Sprintf("registry: failed to resolve %s: %v", key, err))
	}
	return result
}

// WhenReadyAs is WhenReady with the service delivered as T. If the service
// is already registered with another type the call fails immediately; a
// mismatch discovered at delivery time is logged and the callback skipped.
func WhenReadyAs[T any](r *Registry, key string, fn func(T)) error {
	if svc, ok := r.TryGet(key); ok {
		if _, typed := svc.(T); !typed {
			var zero T
			return fmt.Errorf("registry: service %s is %T, expected %T", key, svc, zero)
		}
	}
	return r.WhenReady(key, func(svc component.Service) {
		typed, ok := svc.(T)
		if !ok {
			var zero T
			r.log.Error("Waiter type mismatch", logger.Fields(
				logger.FieldServiceKey, key,
				"got", fmt.Sprintf("%T", svc),
				"expected", fmt.Sprintf("%T", zero),
			))
			return
		}
		fn(typed)
	})
}
