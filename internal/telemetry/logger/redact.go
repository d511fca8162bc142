// Package logger provides structured logging for NoteGuard.
package logger

import (
	"log/slog"
	"strings"
)

// Keys whose non-empty string values are always fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"passphrase",
	"authorization",
	"bearer",
	"credential",
}

// jwtPrefix starts every base64url-encoded JWT header ({"...).
const jwtPrefix = "eyJ"

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if isSensitiveKey(a.Key) && strVal != "" {
			return slog.String(a.Key, redactedValue)
		}
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, RedactString(strVal))
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// isSensitiveValue reports JWTs and "Bearer <token>" header values.
func isSensitiveValue(value string) bool {
	if strings.HasPrefix(value, "Bearer ") {
		return true
	}
	return strings.HasPrefix(value, jwtPrefix) && strings.Count(value, ".") == 2
}

// maskValue keeps the first and last three characters of long values.
func maskValue(value string) string {
	if len(value) <= 12 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// RedactString masks a credential-looking value before it is printed or
// logged. Other values are returned unchanged.
func RedactString(value string) string {
	if rest, ok := strings.CutPrefix(value, "Bearer "); ok {
		return "Bearer " + maskValue(rest)
	}
	if isSensitiveValue(value) {
		return maskValue(value)
	}
	return value
}
