package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	e := NewExecutor("test", Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
	}, nil)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExecuteDoesNotRetryContextErrors(t *testing.T) {
	e := NewExecutor("test", Config{RetryMaxAttempts: 5, RetryInitialBackoff: time.Millisecond}, nil)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return context.DeadlineExceeded
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("deadline errors must not be retried, calls = %d", calls)
	}
}

func TestBreakerOpensAfterSustainedFailures(t *testing.T) {
	e := NewExecutor("test", Config{
		RetryMaxAttempts:    1,
		RetryInitialBackoff: time.Millisecond,
		BreakerMinRequests:  3,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	}, nil)

	boom := errors.New("upstream down")
	for i := 0; i < 5; i++ {
		_ = e.Execute(context.Background(), func(context.Context) error { return boom })
	}

	err := e.Execute(context.Background(), func(context.Context) error { return nil })
	if !IsCircuitOpen(err) {
		t.Errorf("expected open circuit, got %v", err)
	}
}
