package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/servicecore/errors"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, BackoffFactor: 2.0}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{"first attempt", 3, 0, 1, false},
		{"after retries", 3, 2, 3, false},
		{"exhausted", 3, 5, 3, true},
		{"single attempt", 1, 1, 1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			result, err := Retry(context.Background(), fastConfig(tc.attempts), func() (string, error) {
				calls++
				if calls <= tc.failFirst {
					return "", stderrors.New("constructor failed")
				}
				return "timer", nil
			})
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && result != "timer" {
				t.Errorf("expected result, got %q", result)
			}
			if calls != tc.wantCalls {
				t.Errorf("expected %d calls, got %d", tc.wantCalls, calls)
			}
		})
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	last := stderrors.New("third")
	calls := 0
	_, err := Retry(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		if calls == 3 {
			return 0, last
		}
		return 0, stderrors.New("earlier")
	})
	if !stderrors.Is(err, last) {
		t.Errorf("expected last error, got %v", err)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 10, InitialBackoff: 100 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := Retry(ctx, cfg, func() (string, error) {
		calls++
		return "", stderrors.New("error")
	})

	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before the deadline, got %d", calls)
	}
}

func TestRetry_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RetryFunc(ctx, fastConfig(3), func() error {
		called = true
		return nil
	})
	if !stderrors.Is(err, context.Canceled) || called {
		t.Errorf("expected no call and context.Canceled, got called=%v err=%v", called, err)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", stderrors.New("boom"), true},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"retryable app error", errors.ServiceUnavailable("settings store"), true},
		{"permanent app error", errors.InvalidInput("key", "bad"), false},
		{"missing factory", errors.FactoryMissing("timer"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultRetryIf(tc.err); got != tc.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetry_PermanentAppErrorStops(t *testing.T) {
	calls := 0
	err := RetryFunc(context.Background(), fastConfig(5), func() error {
		calls++
		return errors.InvalidInput("settings", "missing path")
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var retries []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		retries = append(retries, attempt)
	}

	_ = RetryFunc(context.Background(), cfg, func() error {
		return stderrors.New("error")
	})

	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("expected retries [1 2], got %v", retries)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{6, time.Second},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt, cfg); got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestCalculateBackoffJitterBounds(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.5,
	}
	for i := 0; i < 100; i++ {
		got := calculateBackoff(1, cfg)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("backoff %v outside jitter range", got)
		}
	}
}
