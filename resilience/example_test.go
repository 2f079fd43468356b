package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/genops/resilience"
)

func ExampleClassify() {
	for _, err := range []error{
		errors.New("429 Too Many Requests"),
		errors.New("503 model overloaded"),
		errors.New("invalid input"),
	} {
		c := resilience.Classify(err)
		fmt.Println(c, c.Retryable())
	}
	// Output:
	// rate_limited true
	// overloaded true
	// permanent false
}

func ExampleBackoff_Delay() {
	b := resilience.DefaultBackoff()
	for attempt := 1; attempt <= 3; attempt++ {
		fmt.Println(b.Delay(attempt))
	}
	// Output:
	// 2s
	// 4s
	// 8s
}

func ExampleNewCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: time.Minute,
	})

	_ = cb.Execute(context.Background(), func(context.Context) error {
		return errors.New("store unreachable")
	})
	err := cb.Execute(context.Background(), func(context.Context) error { return nil })

	fmt.Println(cb.State(), errors.Is(err, resilience.ErrCircuitOpen))
	// Output:
	// open true
}
