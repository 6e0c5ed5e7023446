package nn

import (
	"gonum.org/v1/gonum/mat"
)

// ReLU implements the rectified linear activation: max(0, x).
//
// ReLU has no trainable parameters. The forward pass caches the input mask
// so the backward pass can zero gradients where the activation was clipped.
type ReLU struct {
	mask *mat.Dense // 1 where input > 0, else 0
}

// NewReLU creates a new ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies max(0, x) elementwise.
func (r *ReLU) Forward(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	r.mask = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		in := x.RawRowView(i)
		o := out.RawRowView(i)
		m := r.mask.RawRowView(i)
		for j, v := range in {
			if v > 0 {
				o[j] = v
				m[j] = 1
			}
		}
	}
	return out
}

// Backward zeroes the gradient where the forward input was non-positive.
func (r *ReLU) Backward(grad *mat.Dense) *mat.Dense {
	if r.mask == nil {
		panic("nn: ReLU.Backward called before Forward")
	}
	rows, cols := grad.Dims()
	out := mat.NewDense(rows, cols, nil)
	out.MulElem(grad, r.mask)
	return out
}

// Parameters returns an empty slice: ReLU has no trainable parameters.
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// StateDict returns an empty map: ReLU has no state.
func (r *ReLU) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{}
}

// LoadStateDict is a no-op for ReLU.
func (r *ReLU) LoadStateDict(state map[string]*mat.Dense) error {
	return nil
}
