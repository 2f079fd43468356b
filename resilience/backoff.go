package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes exponential retry delays.
type Backoff struct {
	// Initial is the delay before the first retry.
	// Default: 2 seconds
	Initial time.Duration `mapstructure:"initial"`

	// Multiplier scales the delay for each further retry.
	// Default: 2.0
	Multiplier float64 `mapstructure:"multiplier"`

	// Max caps the delay. Zero means no cap.
	Max time.Duration `mapstructure:"max"`

	// Jitter adds up to 25% random delay.
	Jitter bool `mapstructure:"jitter"`
}

// DefaultBackoff returns 2s, 4s, 8s, ... without jitter.
func DefaultBackoff() Backoff {
	return Backoff{Initial: 2 * time.Second, Multiplier: 2}
}

// Delay returns the delay before retry number attempt, counted from 1.
// With the defaults the delay is 2^attempt seconds.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := b.Initial
	if initial <= 0 {
		initial = 2 * time.Second
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}

	delay := time.Duration(float64(initial) * math.Pow(multiplier, float64(attempt-1)))
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}

	if b.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}
