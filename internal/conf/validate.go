// conf/validate.go

package conf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// databaseNamePattern restricts MySQL database names to unquoted identifiers,
// the name is interpolated into CREATE DATABASE
var databaseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateWebServerSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateHistorySettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOutputSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Sentry.Enabled {
		if err := validateEnvSentryDSN(settings.Sentry.DSN); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("sentry: %v", err))
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateWebServerSettings(settings *Settings) error {
	if err := validatePort(settings.WebServer.Port); err != nil {
		return fmt.Errorf("webserver: %w", err)
	}
	return nil
}

func validateHistorySettings(settings *Settings) error {
	limit := settings.History.Limit
	if limit < 1 || limit > MaxHistoryLimit {
		return fmt.Errorf("history: limit must be between 1 and %d, got %d", MaxHistoryLimit, limit)
	}
	return nil
}

// validateOutputSettings checks that at most one backend is selected and that it is usable
func validateOutputSettings(settings *Settings) error {
	var errs []string
	sqlite := settings.Output.SQLite
	mysql := settings.Output.MySQL

	if sqlite.Enabled && mysql.Enabled {
		errs = append(errs, "only one of sqlite and mysql output can be enabled")
	}

	if sqlite.Enabled && strings.TrimSpace(sqlite.Path) == "" {
		errs = append(errs, "sqlite path is required")
	}

	if mysql.Enabled {
		if mysql.Host == "" {
			errs = append(errs, "mysql host is required")
		}
		if mysql.Username == "" {
			errs = append(errs, "mysql username is required")
		}
		if !databaseNamePattern.MatchString(mysql.Database) {
			errs = append(errs, fmt.Sprintf("mysql database name %q is invalid", mysql.Database))
		}
		if err := validatePort(mysql.Port); err != nil {
			errs = append(errs, fmt.Sprintf("mysql %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("output: %s", strings.Join(errs, ", "))
	}
	return nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be numeric, got %q", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", n)
	}
	return nil
}
