package middleware

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveHeaders lists canonical header names whose values carry
// credentials.
var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"X-Api-Key":           true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// RedactHeaders turns headers into sorted slog attributes for debug logging.
// Credential-bearing headers are masked; for Authorization the scheme is
// kept ("Bearer [REDACTED]") so a missing or wrong scheme is still visible.
// Multi-value headers are joined with a comma.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for _, key := range slices.Sorted(maps.Keys(headers)) {
		name := http.CanonicalHeaderKey(key)
		value := strings.Join(headers[key], ",")
		if sensitiveHeaders[name] {
			value = maskCredential(name, value)
		}
		attrs = append(attrs, slog.String(name, value))
	}
	return attrs
}

func maskCredential(name, value string) string {
	if name == "Authorization" || name == "Proxy-Authorization" {
		if scheme, _, ok := strings.Cut(value, " "); ok && scheme != "" {
			return scheme + " " + redacted
		}
	}
	return redacted
}
