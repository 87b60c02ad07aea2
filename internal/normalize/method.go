package normalize

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Method identifies a normalization transform
type Method string

const (
	MethodMinMax Method = "minmax"
	MethodZScore Method = "zscore"
)

// Methods lists the supported methods in display order
var Methods = []Method{MethodMinMax, MethodZScore}

// ParseMethod accepts exactly "minmax" or "zscore"
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodMinMax, MethodZScore:
		return m, nil
	default:
		return "", validationError(ErrInvalidMethod, "parse_method")
	}
}

// Valid reports whether m is a supported method
func (m Method) Valid() bool {
	return m == MethodMinMax || m == MethodZScore
}

// Description is the human readable name shown after a successful run
func (m Method) Description() string {
	switch m {
	case MethodMinMax:
		return "Min-Max normalization (scales to 0-1)"
	case MethodZScore:
		return "Z-Score normalization (mean=0, std=1)"
	default:
		return "Unknown method"
	}
}

// Label returns the method name title-cased for history tables ("Minmax", "Zscore").
// Casers keep state, so one is built per call.
func (m Method) Label() string {
	return cases.Title(language.English).String(string(m))
}

func (m Method) String() string {
	return string(m)
}
