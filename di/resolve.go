package di

import (
	"context"
	"fmt"
)

// Resolve resolves key and asserts the result to T.
//
//	cfg, err := di.Resolve[*AppConfig](ctx, c, di.Names.Config)
func Resolve[T any](ctx context.Context, c Container, key string) (T, error) {
	var zero T
	instance, err := c.Resolve(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", key, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: %s is %T, expected %T", key, instance, zero)
	}
	return result, nil
}

// MustResolve is Resolve that panics on failure.
func MustResolve[T any](ctx context.Context, c Container, key string) T {
	result, err := Resolve[T](ctx, c, key)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// TryResolve returns false when key is missing, fails to build or has
// another type. Use it for optional dependencies.
func TryResolve[T any](ctx context.Context, c Container, key string) (T, bool) {
	result, err := Resolve[T](ctx, c, key)
	return result, err == nil
}
