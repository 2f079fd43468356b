package resilience

import (
	"testing"
	"time"
)

func TestBackoff_DefaultGrowth(t *testing.T) {
	b := DefaultBackoff()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
	}

	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_ZeroValueUsesDefaults(t *testing.T) {
	var b Backoff
	if got := b.Delay(3); got != 8*time.Second {
		t.Errorf("Delay(3) = %v, want 8s", got)
	}
}

func TestBackoff_Max(t *testing.T) {
	b := Backoff{Initial: time.Second, Multiplier: 10, Max: 5 * time.Second}
	if got := b.Delay(3); got != 5*time.Second {
		t.Errorf("Delay(3) = %v, want capped 5s", got)
	}
}

func TestBackoff_Jitter(t *testing.T) {
	b := DefaultBackoff()
	b.Jitter = true

	for range 50 {
		got := b.Delay(2)
		if got < 4*time.Second || got >= 5*time.Second {
			t.Fatalf("Delay(2) with jitter = %v, want [4s, 5s)", got)
		}
	}
}
