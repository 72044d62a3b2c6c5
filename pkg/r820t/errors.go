package r820t

import "errors"

// Tuner errors
var (
	// ErrFrequencyOutOfRange indicates an LO frequency or divider ratio the PLL cannot represent
	ErrFrequencyOutOfRange = errors.New("frequency out of tunable range")

	// ErrPLLNotLocked indicates the PLL did not lock after the VCO current retry
	ErrPLLNotLocked = errors.New("PLL not locked")

	// ErrNotImplemented indicates a gain mode the driver does not support yet
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidCapMode indicates a crystal capacitance mode outside the known set
	ErrInvalidCapMode = errors.New("invalid crystal cap mode")
)
