package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_NoPatterns(t *testing.T) {
	e := NewExecutor()
	called := false

	err := e.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("Execute() err=%v called=%v", err, called)
	}
	if e.CircuitBreaker() != nil {
		t.Error("expected nil circuit breaker")
	}
}

func TestExecutor_TimeoutCountsAsBreakerFailure(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour})
	e := NewExecutor(WithCircuitBreaker(cb), WithTimeout(5*time.Millisecond))
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	for range 2 {
		if err := e.Execute(context.Background(), slow); !errors.Is(err, ErrTimeout) {
			t.Fatalf("Execute() error = %v, want ErrTimeout", err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	if err := e.Execute(context.Background(), slow); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
}

func TestExecutor_PassesThroughErrors(t *testing.T) {
	e := NewExecutor(
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{})),
		WithTimeout(time.Second),
	)
	testErr := errors.New("permission denied")

	if err := e.Execute(context.Background(), fail(testErr)); !errors.Is(err, testErr) {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}
