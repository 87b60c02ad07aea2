package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PageTitle is shown in the browser tab and page header
const PageTitle = "Simple Data Normalization Tool"

// initRoutes registers the page, API and operational routes
func (s *Server) initRoutes() {
	// pages
	s.Echo.GET("/", s.handleIndex)
	s.Echo.POST("/", s.handleNormalizeForm)
	s.Echo.POST("/records/:id/delete", s.handleDeleteForm)

	// JSON API
	api := s.Echo.Group("/api/v1")
	api.GET("/records", s.handleListRecords)
	api.GET("/records/export", s.handleExportRecords)
	api.GET("/records/:id", s.handleGetRecord)
	api.DELETE("/records/:id", s.handleDeleteRecord)
	api.POST("/normalize", s.handleNormalizeAPI, s.RateLimiterMiddleware())
	api.GET("/stats", s.handleStats)

	s.Echo.GET("/healthz", s.handleHealth)
	if s.metricsEnabled() {
		s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}

// healthResponse reports liveness and whether a datastore is connected
type healthResponse struct {
	Status    string `json:"status"`
	Datastore string `json:"datastore"`
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok", Datastore: "up"}
	if !s.Recorder.Available() {
		resp.Datastore = "unavailable"
	}
	return c.JSON(http.StatusOK, resp)
}
