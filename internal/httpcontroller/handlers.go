package httpcontroller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/normalize"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

// outcome is the result of one normalization request
type outcome struct {
	result  normalize.Result
	saved   bool
	err     error // InvalidMethod or InvalidInput
	elapsed time.Duration
}

// normalizeAndSave runs one normalization and persists it. Storage failures
// only clear the saved flag.
func (s *Server) normalizeAndSave(ctx context.Context, input, method string) outcome {
	start := time.Now()
	result, err := normalize.Process(input, method)
	o := outcome{result: result, err: err, elapsed: time.Since(start)}

	status := metrics.StatusSuccess
	switch {
	case errors.Is(err, normalize.ErrInvalidMethod):
		status = metrics.StatusInvalidMethod
	case err != nil:
		status = metrics.StatusInvalidInput
	}
	if s.Metrics != nil {
		methodLabel := method
		if status == metrics.StatusInvalidMethod {
			methodLabel = metrics.LabelUnknown
		}
		s.Metrics.Normalize.RecordNormalization(methodLabel, status, len(result.Original), o.elapsed.Seconds())
	}

	if err != nil {
		s.log.WithContext(ctx).Debug("normalization rejected",
			logger.String("method", method),
			logger.String("status", status),
			logger.Error(err))
		return o
	}

	o.saved = s.Recorder.Save(ctx, result.Original, result.Normalized, result.Method)
	return o
}

// newPageData returns page data with history and the connection warning
func (s *Server) newPageData(ctx context.Context) PageData {
	data := PageData{Title: PageTitle}
	if !s.Recorder.Available() {
		data.Message = msgStoreUnavailable
		data.MessageType = messageError
	}
	data.History = s.Recorder.Recent(ctx, s.Settings.History.Limit)
	return data
}

// handleIndex renders the empty form with recent history
func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", s.newPageData(c.Request().Context()))
}

// handleNormalizeForm processes a form submission and renders the result.
// Validation errors are shown on the page with status 200, the same as a
// successful run.
func (s *Server) handleNormalizeForm(c echo.Context) error {
	ctx := c.Request().Context()
	input := c.FormValue("data")
	method := c.FormValue("method")

	o := s.normalizeAndSave(ctx, input, method)

	data := PageData{Title: PageTitle, Input: input, Method: method}
	switch {
	case o.err != nil:
		data.Message = userMessage(o.err)
		data.MessageType = messageError
	case o.saved:
		data.Result = &o.result
		data.Message = fmt.Sprintf(msgSuccessFormat, o.result.Method.Description())
		data.MessageType = messageSuccess
	default:
		data.Result = &o.result
		data.Message = msgNotSaved
		data.MessageType = messageError
	}

	// history is read after saving so the new record shows up
	data.History = s.Recorder.Recent(ctx, s.Settings.History.Limit)
	return c.Render(http.StatusOK, "index.html", data)
}

// handleDeleteForm deletes a record from the history table and goes back to the page
func (s *Server) handleDeleteForm(c echo.Context) error {
	s.Recorder.Delete(c.Request().Context(), c.Param("id"))
	return c.Redirect(http.StatusSeeOther, "/")
}
