// Package httpcontroller serves the normalization form, the history page and
// the JSON API.
package httpcontroller

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/observability"
	"github.com/tphakala/datanorm/internal/recorder"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests
const ShutdownTimeout = 10 * time.Second

// Server encapsulates Echo server and related configurations.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Recorder *recorder.Recorder
	Metrics  *observability.Metrics // nil when metrics are disabled

	log logger.Logger
}

// New initializes the HTTP server. rec must not be nil; a recorder without a
// datastore is fine and makes every page show the connection warning.
func New(settings *conf.Settings, rec *recorder.Recorder, m *observability.Metrics, baseLogger logger.Logger) (*Server, error) {
	if baseLogger == nil {
		baseLogger = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	if rec == nil {
		rec = recorder.New(nil, recorder.WithLogger(baseLogger))
	}

	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		Recorder: rec,
		Metrics:  m,
		log:      baseLogger.Module("http"),
	}

	if err := s.initializeServer(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeServer configures and initializes the server.
func (s *Server) initializeServer() error {
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Debug = s.Settings.WebServer.Debug
	// echo's own logger only matters in debug mode, requests go through our logger
	if s.Settings.WebServer.Debug {
		s.Echo.Logger.SetLevel(log.DEBUG)
	} else {
		s.Echo.Logger.SetLevel(log.OFF)
	}
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()
	s.Echo.HTTPErrorHandler = s.httpErrorHandler

	if err := s.setupTemplateRenderer(); err != nil {
		return err
	}
	s.configureMiddleware()
	s.initRoutes()
	return nil
}

// Start listens on the configured port and blocks until the server stops.
// A graceful shutdown returns nil.
func (s *Server) Start() error {
	addr := s.Settings.ListenAddress()
	s.log.Info("HTTP server starting",
		logger.String("address", addr),
		logger.Bool("datastore", s.Recorder.Available()),
		logger.Bool("metrics", s.metricsEnabled()))

	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryNetwork).
			Priority(errors.PriorityCritical).
			Context("operation", "listen").
			Context("address", addr).
			Build()
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.Echo.Shutdown(ctx)
}

func (s *Server) metricsEnabled() bool {
	return s.Metrics != nil && s.Settings.Metrics.Enabled
}
