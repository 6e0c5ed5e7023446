package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are matrices that accumulate gradients during the backward pass.
// They typically represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightMatrix)
//
//	// Access the value
//	w := weight.Value()
//
//	// Get accumulated gradient after backward pass
//	grad := weight.Grad()
type Parameter struct {
	name  string     // Parameter name (e.g. "weight", "bias")
	value *mat.Dense // The parameter matrix
	grad  *mat.Dense // Accumulated gradient (nil until first backward pass)
}

// NewParameter creates a new trainable parameter.
//
// The value matrix should be initialized before creating the Parameter.
// The gradient is allocated lazily on the first AddGrad call.
func NewParameter(name string, value *mat.Dense) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter matrix.
func (p *Parameter) Value() *mat.Dense {
	return p.value
}

// Grad returns the accumulated gradient.
//
// Returns nil if no gradient has been accumulated yet.
func (p *Parameter) Grad() *mat.Dense {
	return p.grad
}

// AddGrad accumulates g into the parameter gradient.
//
// The gradient must have the same shape as the parameter value.
func (p *Parameter) AddGrad(g *mat.Dense) {
	if p.grad == nil {
		r, c := p.value.Dims()
		p.grad = mat.NewDense(r, c, nil)
	}
	p.grad.Add(p.grad, g)
}

// ZeroGrad clears the accumulated gradient.
//
// This should be called before each training step to avoid accumulating
// gradients across iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
