// Package optim implements the optimization algorithms used to train probe
// models.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - SGD: stochastic gradient descent with momentum
//   - Adam: adaptive moment estimation
//
// Design inspired by PyTorch's torch.optim. Gradients are accumulated on the
// parameters themselves by the module backward passes, so Step takes no
// arguments.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    optimizer.ZeroGrad()
//	    loss := criterion.Forward(model.Forward(batch), targets)
//	    model.Backward(criterion.Backward())
//	    optimizer.Step()
//	}
package optim

import (
	"github.com/tatonetti-lab/Plug/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters in place based on the gradients
// accumulated on them during the backward pass.
type Optimizer interface {
	// Step applies one gradient update to all parameters.
	//
	// Parameters with no accumulated gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent gradient
	// accumulation across iterations.
	ZeroGrad()

	// LearningRate returns the current learning rate, for monitoring.
	LearningRate() float64
}

// zeroGrads clears the gradients of all given parameters.
func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
