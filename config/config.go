package config

import (
	"time"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/generator"
	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/scheduler"
	"github.com/jonwraymond/genops/store"
)

// Generator providers.
const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// JobSearchTTL is how long job search results stay valid.
const JobSearchTTL = 21 * 24 * time.Hour

// Config is the complete genops configuration.
type Config struct {
	Scheduler scheduler.Config `mapstructure:"scheduler"`
	Cache     CacheConfig      `mapstructure:"cache"`
	Store     store.Config     `mapstructure:"store"`
	Generator GeneratorConfig  `mapstructure:"generator"`
	Observe   observe.Config   `mapstructure:"observe"`
	HTTP      HTTPConfig       `mapstructure:"http"`

	// Secrets configures secret providers by name, e.g. file: {dir: /run/secrets}.
	Secrets map[string]map[string]any `mapstructure:"secrets"`
}

// CacheConfig configures the tiered result cache.
type CacheConfig struct {
	// MaxEntries bounds the memory tier. Zero means unbounded.
	MaxEntries int `mapstructure:"max_entries" validate:"gte=0"`

	// Seed is the key hash seed.
	Seed uint32 `mapstructure:"seed"`

	WriteConcurrency int64         `mapstructure:"write_concurrency" validate:"gte=0"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" validate:"gte=0"`

	// JobSearchTTL bounds the age of cached job searches.
	JobSearchTTL time.Duration `mapstructure:"job_search_ttl" validate:"gte=0"`

	// Policies overrides caching per operation.
	Policies cache.PolicySet `mapstructure:"policies"`
}

// GeneratorConfig selects the generation backend.
type GeneratorConfig struct {
	// Provider is "gemini", or "none" when the caller supplies a generator.
	Provider string                 `mapstructure:"provider" validate:"oneof=gemini none"`
	Gemini   generator.GeminiConfig `mapstructure:"gemini"`
}

// HTTPConfig configures the operational HTTP server.
type HTTPConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scheduler: scheduler.DefaultConfig(),
		Cache: CacheConfig{
			WriteConcurrency: 4,
			WriteTimeout:     10 * time.Second,
			JobSearchTTL:     JobSearchTTL,
			Policies:         cache.PolicySet{Default: cache.DefaultPolicy()},
		},
		Store: store.DefaultConfig(),
		Generator: GeneratorConfig{
			Provider: ProviderGemini,
			Gemini:   generator.GeminiConfig{Model: generator.DefaultModel},
		},
		Observe: observe.Config{
			ServiceName: "genops",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics:     observe.MetricsConfig{Exporter: "none"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
	}
}
