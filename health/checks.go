package health

import (
	"context"
	"fmt"
)

// Pinger is implemented by components that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker pings the persistent tier.
type StoreChecker struct {
	name    string
	pinger  Pinger
	breaker func() string
}

// NewStoreChecker creates a checker named "store" for p.
func NewStoreChecker(p Pinger) *StoreChecker {
	return &StoreChecker{name: "store", pinger: p}
}

// WithBreaker reports state() alongside the ping. Any value other than
// "closed" degrades a successful ping.
func (c *StoreChecker) WithBreaker(state func() string) *StoreChecker {
	c.breaker = state
	return c
}

func (c *StoreChecker) Name() string { return c.name }

func (c *StoreChecker) Check(ctx context.Context) Result {
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy("store unreachable; serving from memory only", err)
	}
	if c.breaker == nil {
		return Healthy("store reachable")
	}
	state := c.breaker()
	details := map[string]any{"breaker": state}
	if state != "closed" {
		return Degraded("store reachable, breaker " + state).WithDetails(details)
	}
	return Healthy("store reachable").WithDetails(details)
}

// ThresholdChecker compares a gauge against warning and critical levels.
type ThresholdChecker struct {
	name     string
	label    string
	value    func() int
	warning  int
	critical int
}

// NewThresholdChecker creates a checker that is degraded when value()
// exceeds warning and unhealthy when it exceeds critical. A zero level
// disables that level.
func NewThresholdChecker(name, label string, value func() int, warning, critical int) *ThresholdChecker {
	if critical > 0 && warning > critical {
		warning = critical
	}
	return &ThresholdChecker{name: name, label: label, value: value, warning: warning, critical: critical}
}

// NewQueueChecker watches a scheduler backlog.
func NewQueueChecker(name string, depth func() int, warning, critical int) *ThresholdChecker {
	return NewThresholdChecker(name, "queue depth", depth, warning, critical)
}

func (c *ThresholdChecker) Name() string { return c.name }

func (c *ThresholdChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	v := c.value()
	details := map[string]any{
		"value":    v,
		"warning":  c.warning,
		"critical": c.critical,
	}

	switch {
	case c.critical > 0 && v > c.critical:
		return Unhealthy(fmt.Sprintf("%s critical: %d", c.label, v), ErrCheckFailed).WithDetails(details)
	case c.warning > 0 && v > c.warning:
		return Degraded(fmt.Sprintf("%s high: %d", c.label, v)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("%s normal: %d", c.label, v)).WithDetails(details)
	}
}
