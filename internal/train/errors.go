package train

import "errors"

// Common errors.
var (
	// ErrInsufficientData is returned when a fit is attempted with zero
	// training rows.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrInvalidFoldCount is returned when the requested fold count cannot
	// produce stratified folds (fewer than 2 folds, or more folds than
	// samples in the smallest class).
	ErrInvalidFoldCount = errors.New("invalid fold count")

	// ErrInvalidConfig is returned when a training hyperparameter is outside
	// its valid range, e.g. a negative epoch count or a validation split
	// outside [0, 1).
	ErrInvalidConfig = errors.New("invalid training configuration")
)
