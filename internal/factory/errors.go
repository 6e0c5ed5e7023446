package factory

import "errors"

// Common errors.
var (
	// ErrUnknownArchitecture is returned when a model spec names a builtin
	// architecture that is not registered.
	ErrUnknownArchitecture = errors.New("unknown architecture")

	// ErrUnknownBuilder is returned when a model spec references a custom
	// builder name that is not registered in the current process.
	ErrUnknownBuilder = errors.New("unknown model builder")

	// ErrInvalidModelSpec is returned when a model spec's keyword arguments
	// are incompatible with the chosen builder, or the spec itself is
	// malformed.
	ErrInvalidModelSpec = errors.New("invalid model specification")
)
