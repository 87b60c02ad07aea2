package httpcontroller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/normalize"
)

// Messages shown on the page. They mirror the wording users of the form know.
const (
	msgSuccessFormat    = "Data normalized successfully using %s!"
	msgNotSaved         = "Data normalized but couldn't save to database."
	msgInvalidMethod    = "Error: Please select a valid normalization method"
	msgEmptyInput       = "Error: Please enter data"
	msgNoNumbers        = "Error: No valid numbers found"
	msgInvalidInput     = "Error: Invalid input"
	msgStoreUnavailable = "Database connection failed. Please check your configuration."
)

// Message types select the page banner style
const (
	messageSuccess = "success"
	messageError   = "error"
)

// HandlerError is a custom error type that includes an HTTP status code and a user-friendly message.
type HandlerError struct {
	Err     error
	Message string
	Code    int
}

// Error implements the error interface for HandlerError.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// errorResponse is the JSON body of every API error
type errorResponse struct {
	Error string `json:"error"`
}

// userMessage turns a normalization error into the page message
func userMessage(err error) string {
	switch {
	case errors.Is(err, normalize.ErrInvalidMethod):
		return msgInvalidMethod
	case errors.Is(err, normalize.ErrEmptyInput):
		return msgEmptyInput
	case errors.Is(err, normalize.ErrNoNumbers):
		return msgNoNumbers
	default:
		return msgInvalidInput
	}
}

// mapCategoryToHTTPStatus maps an error category to a response status
func mapCategoryToHTTPStatus(category string) int {
	switch category {
	case string(errors.CategoryValidation):
		return http.StatusBadRequest
	case string(errors.CategoryNotFound):
		return http.StatusNotFound
	case string(errors.CategoryDatabase):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// httpErrorHandler renders errors as JSON under /api and as plain text elsewhere
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var (
		he          *HandlerError
		echoErr     *echo.HTTPError
		enhancedErr *errors.EnhancedError
	)
	switch {
	case errors.As(err, &he):
		code, message = he.Code, he.Message
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if m, ok := echoErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	case errors.As(err, &enhancedErr):
		code = mapCategoryToHTTPStatus(enhancedErr.GetCategory())
		message = http.StatusText(code)
	}

	if code >= http.StatusInternalServerError {
		s.log.WithContext(c.Request().Context()).Error("request error",
			logger.String("path", c.Request().URL.Path),
			logger.Int("status", code),
			logger.Error(err))
	}

	var writeErr error
	switch {
	case c.Request().Method == http.MethodHead:
		writeErr = c.NoContent(code)
	case strings.HasPrefix(c.Request().URL.Path, "/api/"):
		writeErr = c.JSON(code, errorResponse{Error: message})
	default:
		writeErr = c.String(code, message)
	}
	if writeErr != nil {
		s.log.Warn("failed to write error response", logger.Error(writeErr))
	}
}
