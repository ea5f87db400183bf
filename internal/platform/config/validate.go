package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Storage.validate(),
		c.Auth.validate(c.Profile),
		c.Client.validate(),
		c.Telemetry.validate(),
	)
}

// ValidateClient checks only the sections used by the terminal client.
func (c *Config) ValidateClient() error {
	return errors.Join(
		c.Log.validate(),
		c.Client.validate(),
	)
}

func (s *StorageConfig) validate() error {
	var errs []error

	switch s.Driver {
	case "sqlite", "postgres":
		// Valid drivers.
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be one of: sqlite, postgres; got %q", s.Driver))
	}
	if s.DSN == "" {
		errs = append(errs, errors.New("storage.dsn must not be empty"))
	}
	if s.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("storage.max_conns must be >= 1, got %d", s.MaxConns))
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) validate(profile string) error {
	var errs []error

	if a.Enabled {
		if a.Secret == "" {
			errs = append(errs, errors.New("auth.secret must not be empty when auth is enabled"))
		}
	} else {
		if profile == "prod" {
			errs = append(errs, errors.New("auth.enabled must be true for the prod profile"))
		}
		if a.DefaultOwner == "" {
			errs = append(errs, errors.New("auth.default_owner must not be empty when auth is disabled"))
		}
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	switch {
	case s.HandlerTimeout <= 0:
		errs = append(errs, errors.New("server.handler_timeout must be positive"))
	case s.WriteTimeout > 0 && s.HandlerTimeout >= s.WriteTimeout:
		errs = append(errs, fmt.Errorf("server.handler_timeout (%s) must be shorter than server.write_timeout (%s)",
			s.HandlerTimeout, s.WriteTimeout))
	}
	if s.HealthCheckTimeout < 0 {
		errs = append(errs, errors.New("server.health_check_timeout must not be negative"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (cl *ClientConfig) validate() error {
	var errs []error

	if cl.BaseURL == "" {
		errs = append(errs, errors.New("client.base_url must not be empty"))
	}
	if cl.Timeout <= 0 {
		errs = append(errs, errors.New("client.timeout must be positive"))
	}
	if cl.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("client.retry.max_attempts must be >= 1, got %d", cl.Retry.MaxAttempts))
	}
	if cl.Retry.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("client.retry.multiplier must be positive, got %f", cl.Retry.Multiplier))
	}
	if cl.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("client.rate_limit.requests_per_second must not be negative, got %f",
			cl.RateLimit.RequestsPerSecond))
	}
	if cl.RateLimit.RequestsPerSecond > 0 && cl.RateLimit.BurstSize < 1 {
		errs = append(errs, errors.New("client.rate_limit.burst_size must be >= 1 when rate limiting is enabled"))
	}
	if cl.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("client.circuit_breaker.max_failures must be >= 1, got %d",
			cl.CircuitBreaker.MaxFailures))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be between 0 and 1, got %g", t.SampleRatio))
	}

	return errors.Join(errs...)
}
