package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/optim"
)

func paramWithGrad(value, grad float64) *nn.Parameter {
	p := nn.NewParameter("x", mat.NewDense(1, 1, []float64{value}))
	p.AddGrad(mat.NewDense(1, 1, []float64{grad}))
	return p
}

func TestSGD_SimpleUpdate(t *testing.T) {
	p := paramWithGrad(2.0, 1.0)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})

	opt.Step()

	// x_new = x - lr * grad = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, p.Value().At(0, 0), 1e-12)
}

func TestSGD_WithMomentum(t *testing.T) {
	p := paramWithGrad(1.0, 1.0)
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1.0, x = 1.0 - 0.1
	opt.Step()
	assert.InDelta(t, 0.9, p.Value().At(0, 0), 1e-12)

	// Step 2 with the same gradient: v = 0.9*1.0 + 1.0 = 1.9
	p.ZeroGrad()
	p.AddGrad(mat.NewDense(1, 1, []float64{1.0}))
	opt.Step()
	assert.InDelta(t, 0.9-0.1*1.9, p.Value().At(0, 0), 1e-12)
}

func TestSGD_SkipsParamsWithoutGrad(t *testing.T) {
	p := nn.NewParameter("x", mat.NewDense(1, 1, []float64{3.0}))
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.5})

	opt.Step()

	assert.Equal(t, 3.0, p.Value().At(0, 0))
}

func TestAdam_FirstStep(t *testing.T) {
	p := paramWithGrad(1.0, 0.5)
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.001})

	opt.Step()

	// On the first step the bias-corrected moments reduce to m_hat = g and
	// v_hat = g^2, so the update is approximately -lr * sign(g).
	expected := 1.0 - 0.001*0.5/(math.Sqrt(0.25)+1e-8)
	assert.InDelta(t, expected, p.Value().At(0, 0), 1e-9)
}

func TestAdam_DefaultsApplied(t *testing.T) {
	opt := optim.NewAdam(nil, optim.AdamConfig{})
	assert.Equal(t, 0.001, opt.LearningRate())
}

func TestZeroGrad_ClearsAll(t *testing.T) {
	p := paramWithGrad(1.0, 1.0)
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{})

	require.NotNil(t, p.Grad())
	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}
