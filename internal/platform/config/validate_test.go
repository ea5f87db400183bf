package config_test

import (
	"testing"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr bool
	}{
		{name: "valid config", modify: func(_ *config.Config) {}},
		{name: "invalid port", modify: func(c *config.Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "zero handler timeout", modify: func(c *config.Config) { c.Server.HandlerTimeout = 0 }, wantErr: true},
		{
			name:    "handler timeout equal to write timeout",
			modify:  func(c *config.Config) { c.Server.HandlerTimeout = c.Server.WriteTimeout },
			wantErr: true,
		},
		{name: "invalid log level", modify: func(c *config.Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "unknown storage driver", modify: func(c *config.Config) { c.Storage.Driver = "mysql" }, wantErr: true},
		{name: "empty dsn", modify: func(c *config.Config) { c.Storage.DSN = "" }, wantErr: true},
		{name: "auth enabled without secret", modify: func(c *config.Config) { c.Auth.Secret = "" }, wantErr: true},
		{
			name: "auth disabled with default owner",
			modify: func(c *config.Config) {
				c.Auth.Enabled = false
				c.Auth.DefaultOwner = "dev"
			},
		},
		{
			name:    "auth disabled without default owner",
			modify:  func(c *config.Config) { c.Auth.Enabled = false },
			wantErr: true,
		},
		{
			name: "auth disabled in prod",
			modify: func(c *config.Config) {
				c.Profile = "prod"
				c.Auth.Enabled = false
				c.Auth.DefaultOwner = "dev"
			},
			wantErr: true,
		},
		{
			name:    "rate limit without burst",
			modify:  func(c *config.Config) { c.Client.RateLimit.RequestsPerSecond = 5 },
			wantErr: true,
		},
		{
			name: "otlp without endpoint",
			modify: func(c *config.Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Exporter = "otlp"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validBaseConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// validBaseConfig returns a Config with all fields set to valid values.
func validBaseConfig() *config.Config {
	return &config.Config{
		Profile: "test",
		Server: config.ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    120 * time.Second,
			HandlerTimeout: 8 * time.Second,
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: config.StorageConfig{
			Driver:   "sqlite",
			DSN:      "file::memory:",
			MaxConns: 1,
		},
		Auth: config.AuthConfig{
			Enabled: true,
			Secret:  "s3cret",
		},
		Client: config.ClientConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 10 * time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     1,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     2 * time.Second,
				Multiplier:      2.0,
			},
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 1,
			},
		},
	}
}
