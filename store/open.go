package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/genops/resilience"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory redis sqlite postgres mysql mongo"`

	// DSN is a redis address or URL, a SQL DSN, or a MongoDB URI.
	DSN string `mapstructure:"dsn" validate:"required_unless=Driver memory"`

	// Database is the MongoDB database name.
	Database string `mapstructure:"database"`

	// Table is the SQL table name.
	Table string `mapstructure:"table"`

	// Prefix is prepended to redis keys.
	Prefix string `mapstructure:"prefix"`

	// Expiration is a physical expiry for redis keys. Zero keeps them.
	Expiration time.Duration `mapstructure:"expiration" validate:"gte=0"`

	// Timeout bounds each store call.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	Breaker resilience.CircuitBreakerConfig `mapstructure:"breaker"`
}

// DefaultConfig returns an in-process store configuration.
func DefaultConfig() Config {
	return Config{
		Driver:   DriverMemory,
		Database: DefaultDatabase,
		Table:    DefaultTable,
		Prefix:   "genops:",
		Timeout:  5 * time.Second,
	}
}

// Open connects the configured backend. Network backends are wrapped in
// Guarded.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverRedis:
		s, err = OpenRedis(ctx, cfg.DSN, cfg.Prefix, cfg.Expiration)
	case DriverSQLite, DriverPostgres, DriverMySQL:
		s, err = OpenSQL(ctx, cfg.Driver, cfg.DSN, cfg.Table)
	case DriverMongo:
		s, err = OpenMongo(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return NewGuarded(s, GuardConfig{Timeout: cfg.Timeout, Breaker: cfg.Breaker}), nil
}

// Close closes s if it holds connections.
func Close(ctx context.Context, s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
