// Package errors wraps errors with a component, a category and context for
// logging and optional telemetry. It also passes through the standard library
// functions so callers need a single errors import.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// ErrorCategory groups errors for logging, metrics labels and HTTP status mapping
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryDatabase      ErrorCategory = "database"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryFileParsing   ErrorCategory = "file-parsing"
	CategoryNetwork       ErrorCategory = "network"
	CategoryHTTP          ErrorCategory = "http-request"
	CategoryProcessing    ErrorCategory = "processing"
	CategorySystem        ErrorCategory = "system-resource"
	CategoryGeneric       ErrorCategory = "generic"
)

// Priority values
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ComponentUnknown is used when no component was set and none could be
// derived from the caller.
const ComponentUnknown = "unknown"

const (
	modulePrefix  = "github.com/tphakala/datanorm/"
	packageSuffix = "internal/errors."
)

// EnhancedError is an error with the metadata needed to log and report it.
// Fields are set once by ErrorBuilder.Build.
type EnhancedError struct {
	Err       error
	Category  ErrorCategory
	Priority  string
	Context   map[string]any
	Timestamp time.Time

	component string
	reported  atomic.Bool
}

func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches another EnhancedError by category, anything else through the
// wrapped error.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return Is(ee.Err, target)
}

func (ee *EnhancedError) GetComponent() string { return ee.component }

func (ee *EnhancedError) GetCategory() string { return string(ee.Category) }

// GetPriority returns the explicit priority, or "" when none was set
func (ee *EnhancedError) GetPriority() string { return ee.Priority }

func (ee *EnhancedError) GetTimestamp() time.Time { return ee.Timestamp }

// GetContext returns a copy of the context map
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	return maps.Clone(ee.Context)
}

// MarkReported records that the error was sent to telemetry
func (ee *EnhancedError) MarkReported() { ee.reported.Store(true) }

func (ee *EnhancedError) IsReported() bool { return ee.reported.Load() }

// ErrorBuilder collects metadata for an EnhancedError
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	priority  string
	context   map[string]any
}

// New starts building an EnhancedError around err
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf is New(fmt.Errorf(format, args...))
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Priority sets the priority. Unknown non-empty values become medium.
func (eb *ErrorBuilder) Priority(priority string) *ErrorBuilder {
	switch priority {
	case "", PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		eb.priority = priority
	default:
		eb.priority = PriorityMedium
	}
	return eb
}

func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build creates the error. A missing component is taken from the calling
// package and a missing category is inferred from the wrapped error. The
// error is handed to the telemetry reporter when one is active.
func (eb *ErrorBuilder) Build() *EnhancedError {
	component := eb.component
	if component == "" {
		component = callerComponent()
	}
	category := eb.category
	if category == "" {
		category = detectCategory(eb.err, component)
	}

	ee := &EnhancedError{
		Err:       eb.err,
		Category:  category,
		Priority:  eb.priority,
		Context:   eb.context,
		Timestamp: time.Now(),
		component: component,
	}

	if hasActiveReporting.Load() {
		reportToTelemetry(ee)
	}
	return ee
}

// callerComponent returns the last path element of the first calling package
// in this module outside the errors package.
func callerComponent() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		name := frame.Function
		if strings.HasPrefix(name, modulePrefix) && !strings.Contains(name, packageSuffix) {
			pkg := strings.TrimPrefix(name, modulePrefix)
			if i := strings.LastIndex(pkg, "/"); i >= 0 {
				pkg = pkg[i+1:]
			}
			if dot := strings.Index(pkg, "."); dot > 0 {
				return pkg[:dot]
			}
		}
		if !more {
			return ComponentUnknown
		}
	}
}

// detectCategory infers a category from a wrapped EnhancedError, the message
// or the component.
func detectCategory(err error, component string) ErrorCategory {
	var inner *EnhancedError
	if As(err, &inner) && inner.Category != "" {
		return inner.Category
	}

	if err != nil {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "not found"):
			return CategoryNotFound
		case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"):
			return CategoryNetwork
		case strings.Contains(msg, "invalid"):
			return CategoryValidation
		}
	}

	switch component {
	case "datastore", "recorder":
		return CategoryDatabase
	case "conf", "configuration":
		return CategoryConfiguration
	case "httpcontroller":
		return CategoryHTTP
	}
	return CategoryGeneric
}

// NewStd is errors.New from the standard library
func NewStd(text string) error {
	return stderrors.New(text)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// IsCategory reports whether err wraps an EnhancedError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return As(err, &ee) && ee.Category == category
}

// IsNotFound is IsCategory(err, CategoryNotFound)
func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}
