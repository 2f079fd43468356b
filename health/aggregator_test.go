package health

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func staticChecker(name string, status Status) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		switch status {
		case StatusDegraded:
			return Degraded(name + " slow")
		case StatusUnhealthy:
			return Unhealthy(name+" down", ErrCheckFailed)
		default:
			return Healthy(name + " ok")
		}
	})
}

func TestNewAggregator_DefaultTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", agg.config.Timeout)
	}
}

func TestAggregator_RegisterOrder(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(staticChecker("store", StatusHealthy))
	agg.Register(staticChecker("scheduler", StatusHealthy))
	agg.Register(staticChecker("store", StatusDegraded))

	if got := agg.Names(); !slices.Equal(got, []string{"store", "scheduler"}) {
		t.Errorf("Names() = %v", got)
	}

	r, err := agg.Check(context.Background(), "store")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusDegraded {
		t.Errorf("re-registered checker not used: %v", r.Status)
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_Report(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{name: "empty", want: StatusHealthy},
		{name: "all healthy", statuses: []Status{StatusHealthy, StatusHealthy}, want: StatusHealthy},
		{name: "one degraded", statuses: []Status{StatusHealthy, StatusDegraded}, want: StatusDegraded},
		{name: "unhealthy wins", statuses: []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, want: StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(AggregatorConfig{})
			for i, s := range tt.statuses {
				agg.Register(staticChecker(string(rune('a'+i)), s))
			}

			report := agg.Report(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.statuses) {
				t.Errorf("len(Checks) = %d, want %d", len(report.Checks), len(tt.statuses))
			}
			if report.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestAggregator_ReportRunsInParallel(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second})

	var running, peak atomic.Int32
	release := make(chan struct{})
	for _, name := range []string{"a", "b", "c"} {
		agg.Register(NewCheckerFunc(name, func(ctx context.Context) Result {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
			return Healthy("ok")
		}))
	}

	done := make(chan Report)
	go func() { done <- agg.Report(context.Background()) }()

	deadline := time.After(time.Second)
	for peak.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("checks did not overlap, peak = %d", peak.Load())
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(release)
	if r := <-done; r.Status != StatusHealthy {
		t.Errorf("Status = %v", r.Status)
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register(NewCheckerFunc("hung", func(ctx context.Context) Result {
		time.Sleep(time.Second)
		return Healthy("late")
	}))

	report := agg.Report(context.Background())
	r := report.Checks["hung"]
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("hung check = %+v", r)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v", report.Status)
	}
}

func TestAggregator_RecordsDuration(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(5 * time.Millisecond)
		return Result{Status: StatusHealthy}
	}))

	r, err := agg.Check(context.Background(), "slow")
	if err != nil {
		t.Fatal(err)
	}
	if r.Duration < 5*time.Millisecond {
		t.Errorf("Duration = %v", r.Duration)
	}
	if r.Timestamp.IsZero() {
		t.Error("Timestamp should default to the start time")
	}
}

func TestOverall(t *testing.T) {
	got := Overall(map[string]Result{
		"a": {Status: StatusHealthy},
		"b": {Status: StatusDegraded},
	})
	if got != StatusDegraded {
		t.Errorf("Overall() = %v", got)
	}
}
