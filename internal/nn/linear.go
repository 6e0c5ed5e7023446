package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input matrix with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias row vector with shape [1, out_features]
//   - y is the output matrix with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [1, out_features]

	input *mat.Dense // cached forward input for the backward pass
}

// NewLinear creates a new Linear layer.
//
// Weights are initialized using the Xavier/Glorot uniform distribution,
// biases to zero.
func NewLinear(inFeatures, outFeatures int) *Linear {
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", Xavier(inFeatures, outFeatures, outFeatures, inFeatures)),
		bias:        NewParameter("bias", Zeros(1, outFeatures)),
	}
}

// InFeatures returns the input width of the layer.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the output width of the layer.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(x *mat.Dense) *mat.Dense {
	_, cols := x.Dims()
	if cols != l.inFeatures {
		panic(fmt.Sprintf("nn: Linear expects %d input features, got %d", l.inFeatures, cols))
	}
	l.input = x

	rows, _ := x.Dims()
	out := mat.NewDense(rows, l.outFeatures, nil)
	out.Mul(x, l.weight.Value().T())

	bias := l.bias.Value().RawRowView(0)
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}
	return out
}

// Backward accumulates weight and bias gradients from the output gradient and
// returns the gradient with respect to the layer input.
//
//	dW = grad.T @ x
//	db = column sums of grad
//	dx = grad @ W
func (l *Linear) Backward(grad *mat.Dense) *mat.Dense {
	if l.input == nil {
		panic("nn: Linear.Backward called before Forward")
	}

	gradW := mat.NewDense(l.outFeatures, l.inFeatures, nil)
	gradW.Mul(grad.T(), l.input)
	l.weight.AddGrad(gradW)

	rows, _ := grad.Dims()
	gradB := mat.NewDense(1, l.outFeatures, nil)
	bRow := gradB.RawRowView(0)
	for i := 0; i < rows; i++ {
		row := grad.RawRowView(i)
		for j := range row {
			bRow[j] += row[j]
		}
	}
	l.bias.AddGrad(gradB)

	gradIn := mat.NewDense(rows, l.inFeatures, nil)
	gradIn.Mul(grad, l.weight.Value())
	return gradIn
}

// Parameters returns the weight and bias parameters.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// StateDict returns the layer parameters keyed by name.
func (l *Linear) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{
		"weight": l.weight.Value(),
		"bias":   l.bias.Value(),
	}
}

// LoadStateDict copies parameter values from the state map into the layer.
func (l *Linear) LoadStateDict(state map[string]*mat.Dense) error {
	for _, p := range []*Parameter{l.weight, l.bias} {
		src, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("nn: missing parameter %q in state dict", p.Name())
		}
		wr, wc := p.Value().Dims()
		sr, sc := src.Dims()
		if wr != sr || wc != sc {
			return fmt.Errorf("nn: parameter %q shape mismatch: have [%d %d], state dict has [%d %d]",
				p.Name(), wr, wc, sr, sc)
		}
		p.Value().Copy(src)
	}
	return nil
}
