package artifact

import "errors"

// Common errors.
var (
	// ErrVersionMismatch is returned when a metadata record or weights blob
	// carries an unrecognized format version.
	ErrVersionMismatch = errors.New("unsupported artifact format version")

	// ErrReconstructionFailed is returned when the recorded model
	// specification cannot be resolved in the current process, e.g. a custom
	// builder that was never registered here. This is surfaced rather than
	// defaulted: a silent fallback would produce a wrong-shaped model.
	ErrReconstructionFailed = errors.New("model reconstruction failed")

	// ErrInvalidMagic is returned when the weights blob does not start with
	// the expected magic bytes.
	ErrInvalidMagic = errors.New("invalid magic bytes")

	// ErrCorruptWeights is returned when the weights blob does not match the
	// tensor manifest in the metadata record.
	ErrCorruptWeights = errors.New("weights blob does not match tensor manifest")
)
