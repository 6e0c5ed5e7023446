// Package artifact persists trained probes as a pair of linked files: a
// binary weights blob and a human-readable JSON metadata record sharing a
// base path.
//
// The metadata record carries everything needed to deterministically rebuild
// the model shape (the canonical model specification plus input/output
// dimensions) before the weights are loaded into it; the blob carries only
// the raw parameter values, laid out per the tensor manifest in the metadata.
//
// File layout for base path "model":
//
//	model.meta.json  metadata record (read first on load)
//	model.weights    magic bytes + format version + little-endian float64 data
package artifact

import (
	"time"

	"github.com/tatonetti-lab/Plug/internal/factory"
)

// Format constants.
const (
	MagicBytes    = "PLUG"
	FormatVersion = 1

	WeightsSuffix = ".weights"
	MetaSuffix    = ".meta.json"
)

const toolkitVersion = "0.2.0" // Current Plug version

// TensorMeta describes one tensor's slot in the weights blob.
type TensorMeta struct {
	Name   string `json:"name"`   // Parameter name (e.g. "0.weight")
	Shape  []int  `json:"shape"`  // [rows, cols]
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// Header is the metadata record stored alongside the weights blob.
type Header struct {
	FormatVersion int               `json:"format_version"`
	PlugVersion   string            `json:"plug_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Spec          factory.Spec      `json:"model_spec"` // Canonical reconstruction recipe
	InputDim      int               `json:"input_dim"`
	NumClasses    int               `json:"num_classes"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"` // Caller-supplied metadata
}

// WeightsPath returns the weights blob path for a base path.
func WeightsPath(base string) string {
	return base + WeightsSuffix
}

// MetaPath returns the metadata record path for a base path.
func MetaPath(base string) string {
	return base + MetaSuffix
}
