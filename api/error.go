package api

import "errors"

// ErrInvalidInput is the single error kind reported by the calculators
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError is a cause of ErrInvalidInput carrying a human-readable message
type InvalidInputError string

const (
	// ErrNegativeValue is returned if any input reading or power value is negative
	ErrNegativeValue InvalidInputError = "values must be non-negative"
	// ErrInvertedMagnitude is returned if real power exceeds apparent power
	ErrInvertedMagnitude InvalidInputError = "apparent power must be ≥ real power"
	// ErrNegativeReading is returned if the solved transformer reading is negative
	ErrNegativeReading InvalidInputError = "adjustment produced a negative reading"
)

func (e InvalidInputError) Error() string {
	return string(e)
}

// Is makes all causes match ErrInvalidInput
func (e InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
