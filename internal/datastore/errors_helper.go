// Package datastore provides error handling helpers for database operations
package datastore

import (
	"fmt"

	"github.com/tphakala/datanorm/internal/errors"
)

// Sentinel errors, matchable with errors.Is through the enhanced wrappers
var (
	ErrRecordNotFound = errors.NewStd("record not found")
	ErrNotOpen        = errors.NewStd("database connection is not initialized")
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a validation error for bad arguments
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Priority(errors.PriorityLow).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}

// notFoundError reports a missing record id
func notFoundError(operation, id string) error {
	return errors.New(ErrRecordNotFound).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Priority(errors.PriorityLow).
		Context("operation", operation).
		Context("record_id", id).
		Build()
}

// notOpenError is returned when a method runs before Open or after Close
func notOpenError(operation string) error {
	return dbError(ErrNotOpen, operation, errors.PriorityHigh)
}

// errorType maps an error to the error_type metric label
func errorType(err error) string {
	switch {
	case errors.IsNotFound(err):
		return "not_found"
	case errors.IsCategory(err, errors.CategoryValidation):
		return "validation"
	case errors.Is(err, ErrNotOpen):
		return "not_open"
	default:
		return "database"
	}
}
