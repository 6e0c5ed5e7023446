package nn

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Sequential chains modules, feeding each module's output into the next.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(768, 64),
//	    nn.NewReLU(),
//	    nn.NewLinear(64, 2),
//	)
//	logits := model.Forward(batch)
type Sequential struct {
	modules []Module
}

// NewSequential creates a Sequential container from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Modules returns the contained modules in order.
func (s *Sequential) Modules() []Module {
	return s.modules
}

// Forward runs the input through every module in order.
func (s *Sequential) Forward(x *mat.Dense) *mat.Dense {
	out := x
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

// Backward propagates the gradient through the modules in reverse order.
func (s *Sequential) Backward(grad *mat.Dense) *mat.Dense {
	g := grad
	for i := len(s.modules) - 1; i >= 0; i-- {
		g = s.modules[i].Backward(g)
	}
	return g
}

// Parameters returns the parameters of all contained modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// StateDict returns all module parameters keyed as "<index>.<name>",
// e.g. "0.weight", "2.bias".
func (s *Sequential) StateDict() map[string]*mat.Dense {
	state := make(map[string]*mat.Dense)
	for i, m := range s.modules {
		for name, value := range m.StateDict() {
			state[fmt.Sprintf("%d.%s", i, name)] = value
		}
	}
	return state
}

// LoadStateDict distributes "<index>.<name>" entries to the contained
// modules.
func (s *Sequential) LoadStateDict(state map[string]*mat.Dense) error {
	for i, m := range s.modules {
		prefix := fmt.Sprintf("%d.", i)
		sub := make(map[string]*mat.Dense)
		for name, value := range state {
			if strings.HasPrefix(name, prefix) {
				sub[strings.TrimPrefix(name, prefix)] = value
			}
		}
		if err := m.LoadStateDict(sub); err != nil {
			return fmt.Errorf("nn: module %d: %w", i, err)
		}
	}
	return nil
}
