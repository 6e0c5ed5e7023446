// Package nn implements the neural network building blocks used by probe
// models.
//
// This package provides:
//   - Module interface: base interface for all NN components
//   - Parameter: trainable parameters with accumulated gradients
//   - Linear: fully connected layer
//   - ReLU: rectified linear activation
//   - CrossEntropyLoss: classification loss with analytic gradient
//   - Sequential: container for stacking layers
//
// Design inspired by PyTorch's nn.Module, with explicit backward passes over
// gonum matrices instead of an autodiff tape: probe architectures are shallow
// feed-forward stacks, so each module computes its own input gradient and
// accumulates parameter gradients in place.
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Module is the base interface for all neural network components.
//
// Every module must implement:
//   - Forward: compute output from input, caching whatever the backward pass
//     needs
//   - Backward: accumulate parameter gradients and return the gradient with
//     respect to the module input
//   - Parameters: return all trainable parameters
//   - StateDict / LoadStateDict: export and import parameters for
//     serialization
//
// Modules can be composed to build architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(768, 128),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 2),
//	)
type Module interface {
	// Forward computes the output of the module given an input matrix.
	//
	// For layer modules the input has shape [batch_size, in_features] and
	// the output shape is determined by the module type.
	Forward(x *mat.Dense) *mat.Dense

	// Backward propagates the output gradient through the module.
	//
	// It accumulates gradients into this module's parameters and returns the
	// gradient with respect to the module's input. Backward must be called
	// after Forward on the same input.
	Backward(grad *mat.Dense) *mat.Dense

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g. activation functions).
	Parameters() []*Parameter

	// StateDict returns a map of parameter names to value matrices.
	//
	// The returned matrices are the live parameter storage, not copies.
	StateDict() map[string]*mat.Dense

	// LoadStateDict copies parameter values from the given state map into
	// this module. It fails if a parameter is missing or has the wrong
	// shape.
	LoadStateDict(state map[string]*mat.Dense) error
}

// CloneState deep-copies a state dict. Used for best-weights snapshots, which
// must not alias the live parameter storage.
func CloneState(state map[string]*mat.Dense) map[string]*mat.Dense {
	out := make(map[string]*mat.Dense, len(state))
	for name, m := range state {
		out[name] = mat.DenseCopyOf(m)
	}
	return out
}
