package health_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/genops/health"
)

type fakeStore struct{ err error }

func (s fakeStore) Ping(context.Context) error { return s.err }

func ExampleAggregator_Report() {
	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(health.NewStoreChecker(fakeStore{}))
	agg.Register(health.NewQueueChecker("scheduler", func() int { return 12 }, 10, 100))

	report := agg.Report(context.Background())
	fmt.Println(report.Status)
	fmt.Println(report.Checks["scheduler"].Message)
	// Output:
	// degraded
	// queue depth high: 12
}

func ExampleNewStoreChecker() {
	checker := health.NewStoreChecker(fakeStore{err: errors.New("dial tcp: connection refused")})

	result := checker.Check(context.Background())
	fmt.Println(result.Status, result.Message)
	// Output:
	// unhealthy store unreachable; serving from memory only
}
