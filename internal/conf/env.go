// env.go - environment variable configuration and validation for datanorm
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "DATANORM_DEBUG", validateEnvBool},
		{"main.log.default_level", "DATANORM_LOG_LEVEL", validateEnvLogLevel},
		{"main.log.console.level", "DATANORM_LOG_LEVEL", validateEnvLogLevel},

		{"webserver.port", "DATANORM_PORT", validateEnvPort},
		{"webserver.debug", "DATANORM_WEBSERVER_DEBUG", validateEnvBool},

		{"history.limit", "DATANORM_HISTORY_LIMIT", validateEnvHistoryLimit},

		{"output.sqlite.enabled", "DATANORM_SQLITE_ENABLED", validateEnvBool},
		{"output.sqlite.path", "DATANORM_SQLITE_PATH", nil},

		{"output.mysql.enabled", "DATANORM_MYSQL_ENABLED", validateEnvBool},
		{"output.mysql.username", "DATANORM_MYSQL_USERNAME", nil},
		{"output.mysql.password", "DATANORM_MYSQL_PASSWORD", nil},
		{"output.mysql.database", "DATANORM_MYSQL_DATABASE", validateEnvDatabaseName},
		{"output.mysql.host", "DATANORM_MYSQL_HOST", nil},
		{"output.mysql.port", "DATANORM_MYSQL_PORT", validateEnvPort},

		{"metrics.enabled", "DATANORM_METRICS_ENABLED", validateEnvBool},

		{"sentry.enabled", "DATANORM_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "DATANORM_SENTRY_DSN", validateEnvSentryDSN},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("must be one of: trace, debug, info, warn, error")
}

func validateEnvPort(value string) error {
	return validatePort(strings.TrimSpace(value))
}

func validateEnvHistoryLimit(value string) error {
	limit, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid history limit: %w", err)
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return fmt.Errorf("history limit must be between 1 and %d, got %d", MaxHistoryLimit, limit)
	}
	return nil
}

func validateEnvDatabaseName(value string) error {
	if !databaseNamePattern.MatchString(value) {
		return fmt.Errorf("database name may only contain letters, digits, '_' and '$'")
	}
	return nil
}

func validateEnvSentryDSN(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("DSN scheme must be http or https, got %q", u.Scheme)
	}
	if u.User == nil || u.Host == "" {
		return fmt.Errorf("DSN must contain a public key and host")
	}
	return nil
}
