package normalize

// Result is a completed normalization, ready to be stored and displayed
type Result struct {
	Method     Method    `json:"method"`
	Original   []float64 `json:"original"`
	Normalized []float64 `json:"normalized"`
}

// Process validates the method, parses the input and normalizes it.
// The method is checked before the input so an invalid method is reported
// even when the data is also invalid.
func Process(input, method string) (Result, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return Result{}, err
	}

	values, err := ParseNumbers(input)
	if err != nil {
		return Result{}, err
	}

	normalized, err := Apply(m, values)
	if err != nil {
		return Result{}, err
	}

	return Result{Method: m, Original: values, Normalized: normalized}, nil
}
