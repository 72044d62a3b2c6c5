package sweep

import "errors"

// Sweep errors
var (
	// ErrInvalidConfig indicates invalid sweep configuration
	ErrInvalidConfig = errors.New("invalid sweep configuration")

	// ErrInvalidRange indicates a start frequency above the stop frequency
	ErrInvalidRange = errors.New("start frequency above stop frequency")

	// ErrInvalidStep indicates a zero step
	ErrInvalidStep = errors.New("step must be at least 1 Hz")

	// ErrInvalidDwell indicates a dwell time outside 0-10 s
	ErrInvalidDwell = errors.New("dwell time must be between 0 and 10 s")

	// ErrTooManySteps indicates a sweep with more than MaxSteps frequencies
	ErrTooManySteps = errors.New("too many sweep steps")
)
