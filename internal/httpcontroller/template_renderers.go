package httpcontroller

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/datanorm/internal/datastore"
	"github.com/tphakala/datanorm/internal/errors"
	"github.com/tphakala/datanorm/internal/logger"
	"github.com/tphakala/datanorm/internal/normalize"
	"github.com/tphakala/datanorm/internal/observability/metrics"
)

//go:embed views/*.html
var ViewsFs embed.FS

// PageData represents data for rendering the index page.
type PageData struct {
	Title       string
	Message     string
	MessageType string // success or error

	// form values echoed back after a POST
	Input  string
	Method string

	Result  *normalize.Result
	History []datastore.Record
}

// TemplateRenderer is a custom HTML template renderer for Echo framework.
type TemplateRenderer struct {
	templates *template.Template
	logger    logger.Logger
	metrics   *metrics.HTTPMetrics
}

// Render renders a template with the given data.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	start := time.Now()

	// execute into a buffer so a failing template never sends a partial page
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		t.logger.Error("template execution failed", logger.String("template", name), logger.Error(err))
		if t.metrics != nil {
			t.metrics.RecordTemplateRenderError(name, "execute")
		}
		return errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryProcessing).
			Context("template", name).
			Build()
	}
	if t.metrics != nil {
		t.metrics.RecordTemplateRender(name, time.Since(start).Seconds())
	}

	_, err := buf.WriteTo(w)
	if err != nil {
		t.logger.Warn("failed to write template result", logger.String("template", name), logger.Error(err))
		if t.metrics != nil {
			t.metrics.RecordTemplateRenderError(name, "write")
		}
	}
	return err
}

// setupTemplateRenderer parses the embedded views and installs the renderer
func (s *Server) setupTemplateRenderer() error {
	tmpl, err := template.New("").Funcs(GetTemplateFunctions()).ParseFS(ViewsFs, "views/*.html")
	if err != nil {
		return errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryFileParsing).
			Priority(errors.PriorityCritical).
			Context("operation", "parse_templates").
			Build()
	}

	r := &TemplateRenderer{
		templates: tmpl,
		logger:    s.log.Module("templates"),
	}
	if s.Metrics != nil {
		r.metrics = s.Metrics.HTTP
	}
	s.Echo.Renderer = r
	return nil
}
