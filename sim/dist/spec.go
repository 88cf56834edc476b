package dist

import "fmt"

// Spec parameterizes a distribution for scenario files.
// Loaded from YAML via sim.LoadScenario.
type Spec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// New creates a Sampler from a Spec.
func New(spec Spec) (Sampler, error) {
	switch spec.Type {
	case "exponential":
		if err := requireParam(spec.Params, "mu"); err != nil {
			return nil, err
		}
		return NewExponential(spec.Params["mu"])

	case "uniform":
		if err := requireParam(spec.Params, "a", "b"); err != nil {
			return nil, err
		}
		return NewUniform(spec.Params["a"], spec.Params["b"])

	case "bounded_pareto":
		if err := requireParam(spec.Params, "k", "p", "alpha"); err != nil {
			return nil, err
		}
		return NewBoundedPareto(spec.Params["k"], spec.Params["p"], spec.Params["alpha"])

	case "bernoulli":
		if err := requireParam(spec.Params, "p"); err != nil {
			return nil, err
		}
		return NewBernoulli(spec.Params["p"])

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
