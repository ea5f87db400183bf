package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Attribute keys whose values never reach a log sink, whatever their content.
var redactedKeys = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"x-api-key",
	"password",
	"secret",
	"token",
	"dsn",
	"redis_password",
}

// Key prefixes treated like redactedKeys, e.g. secret_key or api_key_v2.
var redactedPrefixes = []string{"secret_", "api_key"}

// Value patterns caught in otherwise innocent attributes, such as an error
// string that echoes a header or a connection URL.
var redactedPatterns = []*regexp.Regexp{
	// Authorization header values.
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	// Compact JWTs. Ten characters per segment keeps version strings out.
	regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`),
	// api_key=... and apikey: ...
	regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`),
	// user:password@ in postgres:// and redis:// URLs.
	regexp.MustCompile(`://[^:/@\s]+:[^@\s]+@`),
}

// redactAttr builds the masq ReplaceAttr hook every handler from this package
// installs.
func redactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(redactedKeys)+len(redactedPrefixes)+len(redactedPatterns))
	for _, k := range redactedKeys {
		opts = append(opts, masq.WithFieldName(k))
	}
	for _, p := range redactedPrefixes {
		opts = append(opts, masq.WithFieldPrefix(p))
	}
	for _, re := range redactedPatterns {
		opts = append(opts, masq.WithRegex(re))
	}
	return masq.New(opts...)
}
