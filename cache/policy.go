package cache

import "time"

// DefaultCollection is the persistent collection used when a policy names none.
const DefaultCollection = "ai_cache"

// Policy configures caching for one operation.
type Policy struct {
	// TTL bounds entry age. NoExpiry keeps entries valid forever.
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`

	// Persist enables the persistent tier. When false only memory is used.
	Persist bool `mapstructure:"persist"`

	// Bypass skips both tiers and single-flight; every call fetches live.
	Bypass bool `mapstructure:"bypass"`

	// Collection is the persistent collection for this operation.
	Collection string `mapstructure:"collection"`
}

// DefaultPolicy returns the policy for generic generation results:
// persisted, never expiring.
func DefaultPolicy() Policy {
	return Policy{
		TTL:     NoExpiry,
		Persist: true,
	}
}

// MemoryOnlyPolicy returns a policy for interactive operations that must
// not outlive the process.
func MemoryOnlyPolicy(ttl time.Duration) Policy {
	return Policy{
		TTL:     ttl,
		Persist: false,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{Bypass: true}
}

// CollectionName returns the persistent collection, applying the default.
func (p Policy) CollectionName() string {
	if p.Collection == "" {
		return DefaultCollection
	}
	return p.Collection
}

// PolicySet maps operations to policies.
type PolicySet struct {
	Default    Policy            `mapstructure:"default"`
	Operations map[string]Policy `mapstructure:"operations" validate:"dive"`
}

// For returns the policy registered for operation, or the default.
func (s PolicySet) For(operation string) Policy {
	if p, ok := s.Operations[operation]; ok {
		return p
	}
	return s.Default
}
