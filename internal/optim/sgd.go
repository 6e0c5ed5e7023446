package optim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/nn"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule (momentum > 0):
//
//	v_t = momentum * v_{t-1} + gradient
//	param = param - lr * v_t
//
// With momentum == 0 this reduces to the classic update
// param = param - lr * gradient.
type SGD struct {
	params   []*nn.Parameter
	lr       float64
	momentum float64
	velocity map[*nn.Parameter]*mat.Dense
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum coefficient (default: 0, plain SGD)
}

// NewSGD creates a new SGD optimizer over the given parameters.
//
// Defaults are applied for zero-valued config fields:
//   - LR: 0.01
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:   params,
		lr:       config.LR,
		momentum: config.Momentum,
		velocity: make(map[*nn.Parameter]*mat.Dense),
	}
}

// Step applies one SGD update to all parameters with gradients.
func (s *SGD) Step() {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		update := grad
		if s.momentum > 0 {
			v, ok := s.velocity[param]
			if !ok {
				r, c := grad.Dims()
				v = mat.NewDense(r, c, nil)
				s.velocity[param] = v
			}
			v.Scale(s.momentum, v)
			v.Add(v, grad)
			update = v
		}

		value := param.Value()
		var scaled mat.Dense
		scaled.Scale(s.lr, update)
		value.Sub(value, &scaled)
	}
}

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// LearningRate returns the configured learning rate.
func (s *SGD) LearningRate() float64 {
	return s.lr
}
