package vol

import (
	"errors"
	"fmt"
)

// InsufficientDataError reports an input series shorter than the minimum the
// requested computation needs.
type InsufficientDataError struct {
	Required int
	Actual   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: at least %d observations required, got %d", e.Required, e.Actual)
}

// InvalidInputError reports malformed input such as non-positive prices or
// mismatched series lengths.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Reason }

// FitError reports a model estimation that did not converge or produced
// non-finite parameters. The input itself was well-formed.
type FitError struct {
	Reason string
}

func (e *FitError) Error() string { return "garch fit failed: " + e.Reason }

func IsInsufficientData(err error) bool {
	var t *InsufficientDataError
	return errors.As(err, &t)
}

func IsInvalidInput(err error) bool {
	var t *InvalidInputError
	return errors.As(err, &t)
}

func IsFitFailure(err error) bool {
	var t *FitError
	return errors.As(err, &t)
}
