package httpcontroller

import (
	"html/template"
	"strconv"
	"time"

	"github.com/tphakala/datanorm/internal/normalize"
)

// historyTimeLayout renders timestamps like "Mar 4, 2024 15:04"
const historyTimeLayout = "Jan 2, 2006 15:04"

// GetTemplateFunctions returns the functions available to the views
func GetTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		"inc":               func(i int) int { return i + 1 },
		"formatNumber":      formatNumber,
		"formatTime":        func(t time.Time) string { return t.Local().Format(historyTimeLayout) },
		"methodLabel":       func(m string) string { return normalize.Method(m).Label() },
		"methodDescription": func(m normalize.Method) string { return m.Description() },
	}
}

// formatNumber prints a float with the fewest digits that round-trip
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
