package factory

import (
	"fmt"

	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/report"
)

// MLP sizing constants.
const (
	// DefaultTargetRatio is the default target parameter/sample ratio for
	// the builtin "mlp" architecture. Keeping the parameter count at about
	// half the training sample count guards against overfitting tiny probes
	// on small datasets.
	DefaultTargetRatio = 0.5

	// MinHiddenWidth is the floor on the derived mlp hidden width. The ratio
	// heuristic can drive the width to zero on very small datasets; a model
	// with no hidden capacity cannot learn a nonlinear probe at all.
	MinHiddenWidth = 4
)

// hiddenWidthFor derives the mlp hidden width from the target
// parameter/sample ratio.
//
// A one-hidden-layer mlp has h*(d+1) + (h+1)*c = h*(d+c+1) + c parameters,
// so the width whose parameter count is closest to ratio*n is
// (ratio*n - c) / (d+c+1), rounded and floored at MinHiddenWidth.
func hiddenWidthFor(d, c, n int, ratio float64) int {
	target := ratio * float64(n)
	h := int((target-float64(c))/float64(d+c+1) + 0.5)
	if h < MinHiddenWidth {
		h = MinHiddenWidth
	}
	return h
}

// resolveMLP handles the builtin "mlp" architecture, deriving the hidden
// width from the target parameter/sample ratio unless an explicit "hidden"
// kwarg pins it. The returned canonical spec always pins the hidden width so
// reconstruction does not depend on the original sample count.
func resolveMLP(spec Spec, inputDim, numClasses, numSamples int, rep report.Reporter) (nn.Module, Spec, error) {
	if err := rejectUnknownKwargs(spec.Kwargs, "hidden", "target_ratio"); err != nil {
		return nil, Spec{}, err
	}

	hidden, hasHidden, err := kwargInt(spec.Kwargs, "hidden")
	if err != nil {
		return nil, Spec{}, err
	}
	ratio, hasRatio, err := kwargFloat(spec.Kwargs, "target_ratio")
	if err != nil {
		return nil, Spec{}, err
	}
	if !hasRatio {
		ratio = DefaultTargetRatio
	}

	if !hasHidden {
		if numSamples <= 0 {
			return nil, Spec{}, fmt.Errorf("%w: mlp ratio sizing requires a sample count; pin an explicit hidden width instead", ErrInvalidModelSpec)
		}
		hidden = hiddenWidthFor(inputDim, numClasses, numSamples, ratio)
	}
	if hidden < 1 {
		return nil, Spec{}, fmt.Errorf("%w: hidden width must be >= 1, got %d", ErrInvalidModelSpec, hidden)
	}

	model := nn.NewSequential(
		nn.NewLinear(inputDim, hidden),
		nn.NewReLU(),
		nn.NewLinear(hidden, numClasses),
	)

	params := nn.NumParams(model)
	if numSamples > 0 {
		rep.Eventf("mlp sizing: d=%d n=%d target_ratio=%.3f -> hidden=%d params=%d (params/n=%.3f)",
			inputDim, numSamples, ratio, hidden, params, float64(params)/float64(numSamples))
	}

	canonical := Spec{Arch: "mlp", Kwargs: map[string]any{"hidden": hidden}}
	return model, canonical, nil
}

// buildMLP is the registry entry for "mlp"; it requires a pinned hidden
// width since registry builders have no access to the sample count.
func buildMLP(inputDim, numClasses int, kwargs map[string]any) (nn.Module, error) {
	model, _, err := resolveMLP(Spec{Arch: "mlp", Kwargs: kwargs}, inputDim, numClasses, 0, report.Nop{})
	return model, err
}

// buildLinearProbe is the registry entry for "linear": a single fully
// connected layer from features to class logits, the classic linear probe.
func buildLinearProbe(inputDim, numClasses int, kwargs map[string]any) (nn.Module, error) {
	if err := rejectUnknownKwargs(kwargs); err != nil {
		return nil, err
	}
	return nn.NewSequential(nn.NewLinear(inputDim, numClasses)), nil
}
