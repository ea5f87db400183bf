// Package config provides configuration loading and validation for the todo
// service and its terminal client. Configuration is layered:
// defaults -> base.yaml -> {profile}.yaml -> .env / environment variables.
package config

import "time"

// Config holds all configuration for the service and the client.
type Config struct {
	// Profile is the name passed to Load; it is not read from any source.
	Profile string `koanf:"-"`

	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Storage   StorageConfig   `koanf:"storage"`
	Auth      AuthConfig      `koanf:"auth"`
	CORS      CORSConfig      `koanf:"cors"`
	Client    ClientConfig    `koanf:"client"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// HandlerTimeout is the per-request deadline after which a 504 problem is
	// sent. It must be shorter than WriteTimeout or the connection closes first.
	HandlerTimeout time.Duration `koanf:"handler_timeout"`

	// HealthCheckTimeout bounds each readiness check. Zero leaves only the
	// request deadline.
	HealthCheckTimeout time.Duration `koanf:"health_check_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// StorageConfig selects and configures the todo persistence backend.
type StorageConfig struct {
	Driver   string `koanf:"driver"`
	DSN      string `koanf:"dsn"`
	MaxConns int    `koanf:"max_conns"`
	Migrate  bool   `koanf:"migrate"`
}

// AuthConfig controls how the owner of a request is established.
// With Enabled false every request is attributed to DefaultOwner.
type AuthConfig struct {
	Enabled      bool             `koanf:"enabled"`
	Secret       string           `koanf:"secret"`
	Issuer       string           `koanf:"issuer"`
	Audience     string           `koanf:"audience"`
	DefaultOwner string           `koanf:"default_owner"`
	Revocation   RevocationConfig `koanf:"revocation"`
}

// RevocationConfig points at the Redis deny-list of revoked token IDs.
// An empty RedisAddr disables revocation checks.
type RevocationConfig struct {
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// CORSConfig holds cross-origin settings for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
	MaxAge         int      `koanf:"max_age"`
}

// ClientConfig holds settings for the outbound todo API client.
type ClientConfig struct {
	BaseURL        string               `koanf:"base_url"`
	Timeout        time.Duration        `koanf:"timeout"`
	SessionFile    string               `koanf:"session_file"`
	LogFile        string               `koanf:"log_file"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig holds retry policy settings with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig holds client-side rate limiting. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Exporter    string  `koanf:"exporter"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRatio float64 `koanf:"sample_ratio"` // share of new root traces kept, 0..1
}
