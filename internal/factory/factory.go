// Package factory resolves model specifications into instantiated probe
// models plus serializable reconstruction recipes.
//
// A model specification either names a builtin architecture ("mlp",
// "linear") or references a registered custom builder by symbolic name.
// Custom builders must be registered under a stable name (e.g.
// "mylab.ResidualProbe") before any artifact referencing them can be loaded:
// closures cannot be persisted, so the symbolic name is the contract between
// saving and loading processes.
package factory

import (
	"fmt"
	"sort"

	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/report"
)

// Builder constructs a model for the given input width and class count.
//
// kwargs carries architecture-specific options; builders must reject unknown
// keys with an error wrapping ErrInvalidModelSpec.
type Builder func(inputDim, numClasses int, kwargs map[string]any) (nn.Module, error)

// Spec is the serializable model specification: either a builtin
// architecture name or a symbolic reference to a registered custom builder,
// plus keyword arguments for the builder.
//
// Exactly one of Arch and Builder must be set.
type Spec struct {
	Arch    string         `json:"arch,omitempty" yaml:"arch,omitempty"`
	Builder string         `json:"builder,omitempty" yaml:"builder,omitempty"`
	Kwargs  map[string]any `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`
}

// builtin architectures. Custom builders live in customBuilders and are
// registered by callers at init time.
var (
	builtins = map[string]Builder{
		"mlp":    buildMLP,
		"linear": buildLinearProbe,
	}
	customBuilders = map[string]Builder{}
)

// RegisterBuilder registers a custom builder under a stable symbolic name.
//
// The name is recorded in persisted artifacts; loading such an artifact in
// another process requires the same registration to have happened there
// first.
func RegisterBuilder(name string, b Builder) {
	customBuilders[name] = b
}

// Architectures returns the sorted builtin architecture names.
func Architectures() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve instantiates a model from the given specification.
//
// numSamples is the training sample count, used by sample-count-driven sizing
// heuristics (the builtin "mlp"); pass 0 when reconstructing from a canonical
// spec, which has its dimensions pinned.
//
// Returns the model together with a canonicalized copy of the spec in which
// any derived sizing (e.g. the mlp hidden width) is pinned to concrete
// values, so that re-resolving the canonical spec reproduces the exact same
// shape regardless of sample count.
func Resolve(spec Spec, inputDim, numClasses, numSamples int, rep report.Reporter) (nn.Module, Spec, error) {
	if rep == nil {
		rep = report.Nop{}
	}
	if inputDim <= 0 {
		return nil, Spec{}, fmt.Errorf("%w: input dimension must be positive, got %d", ErrInvalidModelSpec, inputDim)
	}
	if numClasses < 2 {
		return nil, Spec{}, fmt.Errorf("%w: need at least 2 classes, got %d", ErrInvalidModelSpec, numClasses)
	}

	switch {
	case spec.Arch != "" && spec.Builder != "":
		return nil, Spec{}, fmt.Errorf("%w: both arch %q and builder %q set", ErrInvalidModelSpec, spec.Arch, spec.Builder)

	case spec.Arch != "":
		if spec.Arch == "mlp" {
			return resolveMLP(spec, inputDim, numClasses, numSamples, rep)
		}
		builder, ok := builtins[spec.Arch]
		if !ok {
			return nil, Spec{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownArchitecture, spec.Arch, Architectures())
		}
		model, err := builder(inputDim, numClasses, spec.Kwargs)
		if err != nil {
			return nil, Spec{}, err
		}
		return model, spec, nil

	case spec.Builder != "":
		builder, ok := customBuilders[spec.Builder]
		if !ok {
			return nil, Spec{}, fmt.Errorf("%w: %q is not registered", ErrUnknownBuilder, spec.Builder)
		}
		model, err := builder(inputDim, numClasses, spec.Kwargs)
		if err != nil {
			return nil, Spec{}, fmt.Errorf("%w: builder %q: %v", ErrInvalidModelSpec, spec.Builder, err)
		}
		return model, spec, nil

	default:
		return nil, Spec{}, fmt.Errorf("%w: neither arch nor builder set", ErrInvalidModelSpec)
	}
}

// kwargInt extracts an integer keyword argument, accepting the numeric types
// produced by JSON and YAML decoding.
func kwargInt(kwargs map[string]any, key string) (int, bool, error) {
	raw, ok := kwargs[key]
	if !ok {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v != float64(int(v)) {
			return 0, false, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidModelSpec, key, v)
		}
		return int(v), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidModelSpec, key, raw)
	}
}

// kwargFloat extracts a float keyword argument.
func kwargFloat(kwargs map[string]any, key string) (float64, bool, error) {
	raw, ok := kwargs[key]
	if !ok {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidModelSpec, key, raw)
	}
}

// rejectUnknownKwargs errors on any keyword argument outside the allowed set.
func rejectUnknownKwargs(kwargs map[string]any, allowed ...string) error {
	for key := range kwargs {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: unknown keyword argument %q (allowed: %v)", ErrInvalidModelSpec, key, allowed)
		}
	}
	return nil
}
