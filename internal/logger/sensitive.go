package logger

import (
	"regexp"
	"strings"
)

// sensitiveDataPatterns match secrets that must not reach log output
var sensitiveDataPatterns = []*regexp.Regexp{
	// user:password@tcp(host:port) in MySQL DSNs
	regexp.MustCompile(`([^\s/:@]+:)([^\s@]+)(@(?:tcp|unix)\()`),
	// key=value style secrets
	regexp.MustCompile(`(?i)((?:api[_-]?key|token|secret|passw(?:or)?d)[\s:=]+)([^;,\s&]+)()`),
	// Sentry DSNs carry the public key before the host
	regexp.MustCompile(`(https?://)([0-9a-fA-F]{16,})(@)`),
}

// sensitiveKeywords flag field keys whose values are always redacted
var sensitiveKeywords = []string{"password", "passwd", "secret", "token", "dsn", "api_key", "apikey"}

// RedactSensitiveData replaces credentials in free text with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, pattern := range sensitiveDataPatterns {
		input = pattern.ReplaceAllString(input, "${1}[REDACTED]${3}")
	}
	return input
}

// Redacted creates a string field, masking the value when the key or content looks sensitive.
func Redacted(key, value string) Field {
	lower := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) && value != "" {
			return String(key, "[REDACTED]")
		}
	}
	return String(key, RedactSensitiveData(value))
}
