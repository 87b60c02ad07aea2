package normalize

import "github.com/tphakala/datanorm/internal/errors"

// Sentinel errors. ErrEmptyInput and ErrNoNumbers wrap ErrInvalidInput so
// callers can test for the broad kind or the specific cause.
var (
	ErrInvalidMethod = errors.NewStd("please select a valid normalization method")
	ErrInvalidInput  = errors.NewStd("invalid input")
	ErrEmptyInput    = &inputError{msg: "please enter data"}
	ErrNoNumbers     = &inputError{msg: "no valid numbers found"}
)

// inputError is a specific InvalidInput cause
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalidInput }

// validationError wraps a sentinel as a validation-category enhanced error
func validationError(err error, operation string) error {
	return errors.New(err).
		Component("normalize").
		Category(errors.CategoryValidation).
		Priority(errors.PriorityLow).
		Context("operation", operation).
		Build()
}
