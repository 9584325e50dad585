// Package config loads the environment-variable options recognized by the
// routing engine using struct tags: one flat options struct for the
// whole process, parsed once at startup.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full set of environment-driven tuning knobs. Fields are
// grouped by the external collaborator they configure.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"production"`

	UseAdaptiveDataLoading bool `env:"USE_ADAPTIVE_DATA_LOADING" envDefault:"true"`

	ODataBaseURL       string        `env:"ODATA_BASE_URL"`
	ODataUsername      string        `env:"ODATA_USERNAME"`
	ODataPassword      string        `env:"ODATA_PASSWORD"`
	ODataTimeout       time.Duration `env:"ODATA_TIMEOUT" envDefault:"30s"`
	ODataRetryAttempts int           `env:"ODATA_RETRY_ATTEMPTS" envDefault:"3"`
	ODataRetryDelay    time.Duration `env:"ODATA_RETRY_DELAY" envDefault:"1s"`
	ODataEnableCache   bool          `env:"ODATA_ENABLE_CACHE" envDefault:"true"`
	ODataCacheTTL      time.Duration `env:"ODATA_CACHE_TTL" envDefault:"1h"`

	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisEnabled  bool          `env:"REDIS_ENABLED" envDefault:"true"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	DatabaseURL         string        `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/routeengine"`
	DBPoolMax           int           `env:"DB_POOL_MAX" envDefault:"10"`
	DBPoolMin           int           `env:"DB_POOL_MIN" envDefault:"2"`
	DBIdleTimeout       time.Duration `env:"DB_IDLE_TIMEOUT" envDefault:"5m"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" envDefault:"10s"`
	DBStatementTimeout  time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"30s"`

	ObjectStoreBucket string `env:"OBJECT_STORE_BUCKET"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the process environment into a Config. Errors only on a
// malformed value (e.g. a non-integer REDIS_PORT); missing variables fall
// back to their documented defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the admin reinit endpoint must stay disabled.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CacheTTLFor returns the fixed TTL for a named cache bucket,
// falling back to the configured default CacheTTL for anything unlisted.
func (c *Config) CacheTTLFor(bucket string) time.Duration {
	switch bucket {
	case "cities":
		return 1 * time.Hour
	case "upstream_metadata":
		return 24 * time.Hour
	case "entity_fetch":
		return 1 * time.Hour
	default:
		return c.CacheTTL
	}
}
