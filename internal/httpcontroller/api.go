package httpcontroller

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/export"
	"github.com/tphakala/datanorm/internal/normalize"
)

// NormalizeRequest is the body of POST /api/v1/normalize
type NormalizeRequest struct {
	Data   string `json:"data" form:"data"`
	Method string `json:"method" form:"method"`
}

// NormalizeResponse reports the normalized values and whether they were stored
type NormalizeResponse struct {
	Method     normalize.Method `json:"method"`
	Original   []float64        `json:"original"`
	Normalized []float64        `json:"normalized"`
	Saved      bool             `json:"saved"`
}

var errStoreUnavailable = &HandlerError{
	Err:     errors.NewStd("datastore unavailable"),
	Message: "datastore unavailable",
	Code:    http.StatusServiceUnavailable,
}

// requireStore fails API reads when no datastore is connected
func (s *Server) requireStore() error {
	if !s.Recorder.Available() {
		return errStoreUnavailable
	}
	return nil
}

// handleNormalizeAPI normalizes a JSON payload. Storage failures are reported
// through the saved flag, never as an error status.
func (s *Server) handleNormalizeAPI(c echo.Context) error {
	var req NormalizeRequest
	if err := c.Bind(&req); err != nil {
		return &HandlerError{Err: err, Message: "invalid request body", Code: http.StatusBadRequest}
	}

	o := s.normalizeAndSave(c.Request().Context(), req.Data, req.Method)
	if o.err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: userMessage(o.err)})
	}

	return c.JSON(http.StatusOK, NormalizeResponse{
		Method:     o.result.Method,
		Original:   o.result.Original,
		Normalized: o.result.Normalized,
		Saved:      o.saved,
	})
}

// MIMEApplicationXLSX is the content type of exported workbooks
const MIMEApplicationXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// queryLimit reads the limit query parameter, falling back to def
func queryLimit(c echo.Context, def int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > conf.MaxHistoryLimit {
		return 0, &HandlerError{
			Err:     err,
			Message: "limit must be between 1 and " + strconv.Itoa(conf.MaxHistoryLimit),
			Code:    http.StatusBadRequest,
		}
	}
	return n, nil
}

// handleListRecords returns recent records, newest first
func (s *Server) handleListRecords(c echo.Context) error {
	if err := s.requireStore(); err != nil {
		return err
	}

	limit, err := queryLimit(c, s.Recorder.HistoryLimit())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Recorder.Recent(c.Request().Context(), limit))
}

// handleExportRecords downloads recent records as an xlsx workbook
func (s *Server) handleExportRecords(c echo.Context) error {
	if err := s.requireStore(); err != nil {
		return err
	}

	limit, err := queryLimit(c, conf.MaxHistoryLimit)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, s.Recorder.Recent(c.Request().Context(), limit)); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="datanorm-history.xlsx"`)
	return c.Blob(http.StatusOK, MIMEApplicationXLSX, buf.Bytes())
}

func (s *Server) handleGetRecord(c echo.Context) error {
	if err := s.requireStore(); err != nil {
		return err
	}

	record := s.Recorder.Get(c.Request().Context(), c.Param("id"))
	if record == nil {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(c echo.Context) error {
	if err := s.requireStore(); err != nil {
		return err
	}

	if !s.Recorder.Delete(c.Request().Context(), c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleStats(c echo.Context) error {
	if err := s.requireStore(); err != nil {
		return err
	}

	stats := s.Recorder.Stats(c.Request().Context())
	if stats == nil {
		return errStoreUnavailable
	}
	return c.JSON(http.StatusOK, stats)
}
