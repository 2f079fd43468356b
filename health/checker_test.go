package health

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestStatus_Text(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(7), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			data, err := json.Marshal(map[string]Status{"store": tt.status})
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if want := `{"store":"` + tt.want + `"}`; string(data) != want {
				t.Errorf("Marshal() = %s, want %s", data, want)
			}
		})
	}
}

func TestStatus_SeverityOrder(t *testing.T) {
	if !(StatusHealthy < StatusDegraded && StatusDegraded < StatusUnhealthy) {
		t.Fatal("statuses must order healthy < degraded < unhealthy")
	}
}

func TestResultConstructors(t *testing.T) {
	unreachable := errors.New("dial tcp: connection refused")

	tests := []struct {
		name    string
		result  Result
		status  Status
		message string
		err     error
	}{
		{"healthy", Healthy("store reachable"), StatusHealthy, "store reachable", nil},
		{"degraded", Degraded("store reachable, breaker half-open"), StatusDegraded, "store reachable, breaker half-open", nil},
		{"unhealthy", Unhealthy("store unreachable; serving from memory only", unreachable), StatusUnhealthy, "store unreachable; serving from memory only", unreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.status)
			}
			if tt.result.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.result.Message, tt.message)
			}
			if !errors.Is(tt.result.Error, tt.err) {
				t.Errorf("Error = %v, want %v", tt.result.Error, tt.err)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp is zero")
			}
		})
	}
}

func TestResult_WithDetailsReturnsCopy(t *testing.T) {
	base := Degraded("queue depth high: 12")
	withDetails := base.WithDetails(map[string]any{"value": 12, "warning": 10})

	if base.Details != nil {
		t.Errorf("base Details = %v, want nil", base.Details)
	}
	if withDetails.Details["value"] != 12 {
		t.Errorf("Details[value] = %v, want 12", withDetails.Details["value"])
	}
	if withDetails.Message != base.Message || withDetails.Status != base.Status {
		t.Errorf("WithDetails changed the result: %+v", withDetails)
	}
}

func TestCheckerFunc_GeneratorQuota(t *testing.T) {
	remaining := 0
	checker := NewCheckerFunc("generator_quota", func(ctx context.Context) Result {
		if err := ctx.Err(); err != nil {
			return Unhealthy("context cancelled", err)
		}
		if remaining == 0 {
			return Degraded("generation quota exhausted")
		}
		return Healthy("generation quota available")
	})

	if checker.Name() != "generator_quota" {
		t.Errorf("Name() = %q", checker.Name())
	}
	if got := checker.Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("Check() Status = %v, want degraded", got.Status)
	}

	remaining = 5
	if got := checker.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("Check() Status = %v, want healthy", got.Status)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := checker.Check(ctx)
	if got.Status != StatusUnhealthy || !errors.Is(got.Error, context.Canceled) {
		t.Errorf("Check() = %v, %v, want unhealthy with context.Canceled", got.Status, got.Error)
	}
}
