package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numericToken matches plain decimal literals: optional sign, digits with an
// optional fraction (or a bare fraction) and an optional exponent.
// NaN, Inf, hex and underscore forms accepted by strconv are excluded.
var numericToken = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// isSeparator reports whether r splits tokens
func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// ParseNumbers extracts the numeric values from free-form text.
// Tokens are separated by runs of commas and whitespace; tokens that are not
// numeric literals, or that overflow float64, are skipped.
func ParseNumbers(input string) ([]float64, error) {
	if strings.TrimSpace(input) == "" {
		return nil, validationError(ErrEmptyInput, "parse_numbers")
	}

	tokens := strings.FieldsFunc(input, isSeparator)
	values := make([]float64, 0, len(tokens))

	for _, token := range tokens {
		if !numericToken.MatchString(token) {
			continue
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, validationError(ErrNoNumbers, "parse_numbers")
	}

	return values, nil
}
