package errors

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter receives errors as they are built
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// SentryReporter sends errors to Sentry through the sentry-go hub set up by
// the telemetry package. Messages and string context values are scrubbed of
// credentials first.
type SentryReporter struct {
	enabled bool
}

func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{enabled: enabled}
}

func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError captures one event per error. Validation and not-found errors
// are user mistakes and are not sent.
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() {
		return
	}
	if ee.Category == CategoryValidation || ee.Category == CategoryNotFound {
		return
	}

	title := errorTitle(ee)
	message := scrubMessageForPrivacy(fmt.Sprintf("[%s] %s", ee.Category, ee.Err))
	level := sentryLevel(ee.Category)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.GetComponent())
		scope.SetTag("category", string(ee.Category))
		if ee.Priority != "" {
			scope.SetTag("priority", ee.Priority)
		}
		for key, value := range ee.Context {
			if str, ok := value.(string); ok {
				value = scrubMessageForPrivacy(str)
			}
			scope.SetContext(key, map[string]any{"value": value})
		}
		scope.SetFingerprint([]string{title})

		event := sentry.NewEvent()
		event.Level = level
		event.Message = message
		event.Exception = []sentry.Exception{{Type: title, Value: message}}
		sentry.CaptureEvent(event)
	})

	ee.MarkReported()
}

var categoryTitles = map[ErrorCategory]string{
	CategoryDatabase:      "Database Error",
	CategoryConfiguration: "Configuration Error",
	CategoryFileIO:        "File I/O Error",
	CategoryFileParsing:   "Parse Error",
	CategoryNetwork:       "Network Error",
	CategoryHTTP:          "HTTP Error",
	CategoryProcessing:    "Processing Error",
	CategorySystem:        "System Error",
	CategoryValidation:    "Validation Error",
	CategoryNotFound:      "Not Found",
}

// errorTitle builds "<Component> <Category> <Operation>", for example
// "Datastore Database Error Get Recent".
func errorTitle(ee *EnhancedError) string {
	var parts []string
	if c := ee.GetComponent(); c != "" && c != ComponentUnknown {
		parts = append(parts, titleWords(c))
	}
	if t, ok := categoryTitles[ee.Category]; ok {
		parts = append(parts, t)
	}
	if op, ok := ee.Context["operation"].(string); ok && op != "" {
		parts = append(parts, titleWords(op))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%T", ee.Err)
	}
	return strings.Join(parts, " ")
}

// titleWords turns snake_case or kebab-case into space separated title case
func titleWords(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sentryLevel(category ErrorCategory) sentry.Level {
	switch category {
	case CategoryNetwork, CategoryFileIO, CategoryHTTP:
		return sentry.LevelWarning
	default:
		return sentry.LevelError
	}
}

var (
	reporterMu         sync.RWMutex
	telemetryReporter  TelemetryReporter
	hasActiveReporting atomic.Bool
)

// SetTelemetryReporter installs the process-wide reporter; nil disables reporting
func SetTelemetryReporter(reporter TelemetryReporter) {
	reporterMu.Lock()
	defer reporterMu.Unlock()
	telemetryReporter = reporter
	hasActiveReporting.Store(reporter != nil && reporter.IsEnabled())
}

func GetTelemetryReporter() TelemetryReporter {
	reporterMu.RLock()
	defer reporterMu.RUnlock()
	return telemetryReporter
}

func reportToTelemetry(ee *EnhancedError) {
	if reporter := GetTelemetryReporter(); reporter != nil && reporter.IsEnabled() {
		reporter.ReportError(ee)
	}
}

var (
	urlQueryRegex = regexp.MustCompile(`(https?://[^?\s]+)\?\S*`)
	// user:password@tcp(host:port) in go-sql-driver/mysql DSNs
	dsnCredentialRegex = regexp.MustCompile(`[^\s/:@]+:[^\s@]*@(tcp|unix)\(`)
	secretRegexes      = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(api[_-]?key|token|auth|password)[=:]\S+`),
		regexp.MustCompile(`[0-9a-fA-F]{32,}`),
	}
)

// scrubMessageForPrivacy removes query strings, DSN credentials and secrets
func scrubMessageForPrivacy(message string) string {
	scrubbed := urlQueryRegex.ReplaceAllString(message, "$1?[REDACTED]")
	scrubbed = dsnCredentialRegex.ReplaceAllString(scrubbed, "[CREDENTIALS_REDACTED]@$1(")
	for _, re := range secretRegexes {
		scrubbed = re.ReplaceAllString(scrubbed, "[API_KEY_REDACTED]")
	}
	return scrubbed
}
