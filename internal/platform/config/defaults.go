package config

const (
	defaultServerPort = 8080

	defaultStorageMaxConns = 10

	defaultRetryMaxAttempts = 1
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultCORSMaxAge = 300
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":                 "0.0.0.0",
		"server.port":                 defaultServerPort,
		"server.read_timeout":         "5s",
		"server.write_timeout":        "10s",
		"server.handler_timeout":      "8s",
		"server.idle_timeout":         "120s",
		"server.shutdown_timeout":     "15s",
		"server.health_check_timeout": "2s",

		"log.level":  "info",
		"log.format": "json",

		"storage.driver":    "sqlite",
		"storage.dsn":       "file:todos.db?_foreign_keys=on",
		"storage.max_conns": defaultStorageMaxConns,
		"storage.migrate":   true,

		"auth.enabled":                   true,
		"auth.secret":                    "",
		"auth.issuer":                    "",
		"auth.audience":                  "",
		"auth.default_owner":             "",
		"auth.revocation.redis_addr":     "",
		"auth.revocation.redis_password": "",
		"auth.revocation.redis_db":       0,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.max_age":         defaultCORSMaxAge,

		"client.base_url":                        "http://localhost:8080/api",
		"client.timeout":                         "10s",
		"client.session_file":                    "",
		"client.log_file":                        "",
		"client.retry.max_attempts":              defaultRetryMaxAttempts,
		"client.retry.initial_interval":          "100ms",
		"client.retry.max_interval":              "2s",
		"client.retry.multiplier":                defaultRetryMultiplier,
		"client.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"client.circuit_breaker.timeout":         "30s",
		"client.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"client.rate_limit.requests_per_second":  0,
		"client.rate_limit.burst_size":           0,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "todo-service",
		"telemetry.sample_ratio": 1.0,
	}
}
