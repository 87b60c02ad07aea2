// Package normalize parses numeric input and applies min-max and z-score
// normalization. All functions are pure; results are rounded to 4 decimals.
package normalize

import "math"

// precision is the rounding factor for 4 decimal places
const precision = 1e4

// round4 rounds half away from zero to 4 decimals and folds -0 into 0
func round4(v float64) float64 {
	r := math.Round(v*precision) / precision
	if r == 0 {
		return 0
	}
	return r
}

// minMaxRange returns the smallest and largest value of a non-empty slice
func minMaxRange(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// meanStdDev returns the mean and population standard deviation (divide by n)
func meanStdDev(values []float64) (mean, stddev float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(len(values)))
}

// MinMax scales values linearly into [0, 1] using (x - min) / (max - min).
// A constant input maps to all zeros. values must not be empty.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := minMaxRange(values)
	span := hi - lo
	if span == 0 {
		return out
	}

	for i, v := range values {
		out[i] = round4((v - lo) / span)
	}
	return out
}

// ZScore standardizes values using (x - mean) / stddev with the population
// standard deviation. A constant input maps to all zeros. values must not be empty.
func ZScore(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	mean, stddev := meanStdDev(values)
	if stddev == 0 {
		return out
	}

	for i, v := range values {
		out[i] = round4((v - mean) / stddev)
	}
	return out
}

// Apply dispatches to the transform selected by method
func Apply(method Method, values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, validationError(ErrNoNumbers, "apply")
	}

	switch method {
	case MethodMinMax:
		return MinMax(values), nil
	case MethodZScore:
		return ZScore(values), nil
	default:
		return nil, validationError(ErrInvalidMethod, "apply")
	}
}
