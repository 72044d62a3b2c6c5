package registers

import "errors"

// Shadow errors
var (
	// ErrOutOfRange indicates a register outside the shadow window
	ErrOutOfRange = errors.New("register outside shadow window")

	// ErrUninitialized indicates a cached read of a register never written
	ErrUninitialized = errors.New("register never written")
)
