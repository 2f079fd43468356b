package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonwraymond/genops/secret"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GENOPS"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Load reads configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	return LoadContext(context.Background(), path)
}

// LoadContext is Load with a context for secret resolution.
func LoadContext(ctx context.Context, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := resolveSecrets(ctx, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Observe.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cfg.Generator.Provider == ProviderGemini && cfg.Generator.Gemini.APIKey == "" {
		return fmt.Errorf("%w: generator.gemini.api_key is required", ErrInvalid)
	}
	return nil
}

func resolveSecrets(ctx context.Context, cfg *Config) error {
	providers := make(map[string]map[string]any, len(cfg.Secrets)+1)
	maps.Copy(providers, cfg.Secrets)
	if _, ok := providers["env"]; !ok {
		providers["env"] = nil
	}

	r, err := secret.DefaultRegistry.NewResolverFromConfig(providers)
	if err != nil {
		return fmt.Errorf("config: secrets: %w", err)
	}
	defer r.Close()

	if err := r.ResolveFields(ctx, &cfg.Generator.Gemini.APIKey, &cfg.Store.DSN); err != nil {
		return fmt.Errorf("config: resolve secrets: %w", err)
	}
	return nil
}

// setDefaults registers every key so environment overrides apply even when
// the file does not mention them.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("scheduler.min_interval", d.Scheduler.MinInterval)
	v.SetDefault("scheduler.max_retries", d.Scheduler.MaxRetries)
	v.SetDefault("scheduler.backoff.initial", d.Scheduler.Backoff.Initial)
	v.SetDefault("scheduler.backoff.multiplier", d.Scheduler.Backoff.Multiplier)
	v.SetDefault("scheduler.backoff.max", d.Scheduler.Backoff.Max)
	v.SetDefault("scheduler.backoff.jitter", d.Scheduler.Backoff.Jitter)

	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.seed", d.Cache.Seed)
	v.SetDefault("cache.write_concurrency", d.Cache.WriteConcurrency)
	v.SetDefault("cache.write_timeout", d.Cache.WriteTimeout)
	v.SetDefault("cache.job_search_ttl", d.Cache.JobSearchTTL)
	v.SetDefault("cache.policies.default.ttl", d.Cache.Policies.Default.TTL)
	v.SetDefault("cache.policies.default.persist", d.Cache.Policies.Default.Persist)
	v.SetDefault("cache.policies.default.bypass", d.Cache.Policies.Default.Bypass)
	v.SetDefault("cache.policies.default.collection", d.Cache.Policies.Default.Collection)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.database", d.Store.Database)
	v.SetDefault("store.table", d.Store.Table)
	v.SetDefault("store.prefix", d.Store.Prefix)
	v.SetDefault("store.expiration", d.Store.Expiration)
	v.SetDefault("store.timeout", d.Store.Timeout)
	v.SetDefault("store.breaker.max_failures", d.Store.Breaker.MaxFailures)
	v.SetDefault("store.breaker.reset_timeout", d.Store.Breaker.ResetTimeout)
	v.SetDefault("store.breaker.half_open_max_requests", d.Store.Breaker.HalfOpenMaxRequests)

	v.SetDefault("generator.provider", d.Generator.Provider)
	v.SetDefault("generator.gemini.api_key", d.Generator.Gemini.APIKey)
	v.SetDefault("generator.gemini.model", d.Generator.Gemini.Model)
	v.SetDefault("generator.gemini.temperature", d.Generator.Gemini.Temperature)
	v.SetDefault("generator.gemini.max_output_tokens", d.Generator.Gemini.MaxOutputTokens)

	v.SetDefault("observe.service_name", d.Observe.ServiceName)
	v.SetDefault("observe.version", d.Observe.Version)
	v.SetDefault("observe.tracing.enabled", d.Observe.Tracing.Enabled)
	v.SetDefault("observe.tracing.exporter", d.Observe.Tracing.Exporter)
	v.SetDefault("observe.tracing.sample_pct", d.Observe.Tracing.SamplePct)
	v.SetDefault("observe.metrics.enabled", d.Observe.Metrics.Enabled)
	v.SetDefault("observe.metrics.exporter", d.Observe.Metrics.Exporter)
	v.SetDefault("observe.logging.enabled", d.Observe.Logging.Enabled)
	v.SetDefault("observe.logging.level", d.Observe.Logging.Level)

	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.read_header_timeout", d.HTTP.ReadHeaderTimeout)
	v.SetDefault("http.shutdown_timeout", d.HTTP.ShutdownTimeout)
}
