// Package telemetry provides privacy-compliant, opt-in error tracking with Sentry.
package telemetry

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
)

// FlushTimeout bounds how long shutdown waits for queued events
const FlushTimeout = 2 * time.Second

var (
	initMu            sync.Mutex
	sentryInitialized bool
)

// PlatformInfo holds privacy-safe platform information attached as tags
type PlatformInfo struct {
	OS           string `json:"os"`
	Architecture string `json:"arch"`
	NumCPU       int    `json:"num_cpu"`
	GoVersion    string `json:"go_version"`
}

func collectPlatformInfo() PlatformInfo {
	return PlatformInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}
}

// InitSentry initializes the Sentry SDK and hooks it into the errors package.
// Nothing is sent unless the user enabled Sentry in the configuration.
func InitSentry(settings *conf.Settings, log logger.Logger) error {
	return initSentry(settings, nil, log)
}

// initSentry accepts a transport so tests can capture events
func initSentry(settings *conf.Settings, transport sentry.Transport, log logger.Logger) error {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}

	if !settings.Sentry.Enabled {
		log.Debug("Sentry telemetry is disabled (opt-in required)")
		errors.SetTelemetryReporter(nil)
		return nil
	}

	if err := initializeSentrySDK(settings, transport); err != nil {
		return err
	}

	configureSentryScope(settings)
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))

	initMu.Lock()
	sentryInitialized = true
	initMu.Unlock()

	log.Info("Sentry telemetry initialized",
		logger.String("release", release(settings)),
		logger.Redacted("dsn", settings.Sentry.DSN))
	return nil
}

func release(settings *conf.Settings) string {
	version := settings.Version
	if version == "" {
		version = "dev"
	}
	return "datanorm@" + version
}

// initializeSentrySDK initializes the Sentry SDK with privacy-compliant options
func initializeSentrySDK(settings *conf.Settings, transport sentry.Transport) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.Sentry.DSN,
		SampleRate: 1.0,
		Debug:      settings.Sentry.Debug,

		AttachStacktrace: false,
		Environment:      "production",
		ServerName:       "", // prevent hostname leakage

		Release:    release(settings),
		Transport:  transport,
		BeforeSend: applyPrivacyFiltersHook,
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}
	return nil
}

// configureSentryScope sets tags shared by every event
func configureSentryScope(settings *conf.Settings) {
	platformInfo := collectPlatformInfo()
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", platformInfo.OS)
		scope.SetTag("arch", platformInfo.Architecture)
		scope.SetTag("go_version", platformInfo.GoVersion)
		if backend := settings.StorageBackend(); backend != "" {
			scope.SetTag("storage_backend", backend)
		}
	})
}

func applyPrivacyFiltersHook(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	return applyPrivacyFilters(event)
}

// applyPrivacyFilters strips user, host and runtime details from an event
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}

// Flush waits for queued events. It is a no-op when Sentry is not initialized.
func Flush(timeout time.Duration) bool {
	initMu.Lock()
	initialized := sentryInitialized
	initMu.Unlock()

	if !initialized {
		return true
	}
	return sentry.Flush(timeout)
}
