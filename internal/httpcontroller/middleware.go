package httpcontroller

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
)

// MaxBodySize limits form and JSON payloads
const MaxBodySize = "1M"

// Per-client limits for the normalize API
const (
	APIRateLimit = 20 // requests per second
	APIRateBurst = 40
)

// unmatchedPath labels requests that did not match any route
const unmatchedPath = "unmatched"

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, requestID string) {
			// carry the id in the request context so every log line has a trace_id
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), requestID)))
		},
	}))
	s.Echo.Use(middleware.BodyLimit(MaxBodySize))
	s.Echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "same-origin",
	}))
	s.Echo.Use(s.RequestLoggerMiddleware())
	if s.Metrics != nil {
		s.Echo.Use(s.TelemetryMiddleware())
	}
}

// RateLimiterMiddleware limits requests per client IP
func (s *Server) RateLimiterMiddleware() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(APIRateLimit),
		Burst:     APIRateBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.log.WithContext(c.Request().Context()).Warn("rate limit exceeded",
				logger.String("client_ip", identifier))
			return &HandlerError{Err: err, Message: "too many requests", Code: http.StatusTooManyRequests}
		},
	})
}

// RequestLoggerMiddleware logs one line per request with the request id
func (s *Server) RequestLoggerMiddleware() echo.MiddlewareFunc {
	reqLog := s.log.Module("request")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler set the final status before logging
				c.Error(err)
			}

			req := c.Request()
			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.Int("status", c.Response().Status),
				logger.Int64("bytes", c.Response().Size),
				logger.Duration("duration", time.Since(start)),
				logger.String("client_ip", c.RealIP()),
			}

			if err != nil {
				fields = append(fields, logger.Error(err))
			}

			l := reqLog.WithContext(req.Context())
			switch status := c.Response().Status; {
			case status >= http.StatusInternalServerError:
				l.Error("request failed", fields...)
			case status >= http.StatusBadRequest:
				l.Warn("request rejected", fields...)
			default:
				l.Debug("request served", fields...)
			}
			return nil
		}
	}
}

// TelemetryMiddleware records request counts, durations, sizes and in-flight requests
func (s *Server) TelemetryMiddleware() echo.MiddlewareFunc {
	httpMetrics := s.Metrics.HTTP

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpMetrics.RequestStarted()
			defer httpMetrics.RequestFinished()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = unmatchedPath
			}
			method := c.Request().Method
			statusCode := c.Response().Status
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			httpMetrics.RecordHTTPRequest(method, path, statusCode, time.Since(start).Seconds())
			httpMetrics.RecordHTTPResponseSize(method, path, c.Response().Size)
			if err != nil {
				httpMetrics.RecordHTTPRequestError(method, path, categorizeError(err))
			}
			return nil
		}
	}
}

// categorizeError categorizes errors for metrics
func categorizeError(err error) string {
	var enhancedErr *errors.EnhancedError
	if errors.As(err, &enhancedErr) {
		switch enhancedErr.GetCategory() {
		case string(errors.CategoryValidation):
			return "validation"
		case string(errors.CategoryNotFound):
			return "not_found"
		case string(errors.CategoryDatabase):
			return "database"
		case string(errors.CategoryConfiguration):
			return "configuration"
		default:
			return "unknown"
		}
	}

	var he *HandlerError
	if errors.As(err, &he) {
		return categorizeStatus(he.Code)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return categorizeStatus(echoErr.Code)
	}
	return "unknown"
}

func categorizeStatus(code int) string {
	switch {
	case code == http.StatusNotFound:
		return "not_found"
	case code == http.StatusRequestEntityTooLarge:
		return "body_limit"
	case code == http.StatusServiceUnavailable:
		return "unavailable"
	case code < http.StatusInternalServerError:
		return "validation"
	default:
		return "system"
	}
}
