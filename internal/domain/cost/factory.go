// Package cost - factory.go
// Builds strategies from declarative content-pack specs.
package cost

import "fmt"

// Spec is the declarative selection of a cost curve. Content packs fill one
// of these per purchasable; unknown kinds and invalid parameters are
// configuration errors surfaced at boot.
type Spec struct {
	Kind           string  `yaml:"kind" json:"kind"`                       // exponential | linear | polynomial | step | hybrid
	Multiplier     float64 `yaml:"multiplier" json:"multiplier"`           // exponential
	Increment      float64 `yaml:"increment" json:"increment"`             // linear
	Exponent       float64 `yaml:"exponent" json:"exponent"`               // polynomial
	StepSize       int     `yaml:"step_size" json:"step_size"`             // step
	StepMultiplier float64 `yaml:"step_multiplier" json:"step_multiplier"` // step
	Threshold      int     `yaml:"threshold" json:"threshold"`             // hybrid
	Early          *Spec   `yaml:"early" json:"early"`                     // hybrid
	Late           *Spec   `yaml:"late" json:"late"`                       // hybrid
}

// DefaultMultiplier is the conventional idle-game price growth per level.
const DefaultMultiplier = 1.15

// New builds a Strategy from a Spec. A nil spec yields the default
// exponential curve.
func New(spec *Spec) (Strategy, error) {
	if spec == nil {
		return NewExponential(DefaultMultiplier)
	}
	switch spec.Kind {
	case "", "exponential":
		m := spec.Multiplier
		if m == 0 {
			m = DefaultMultiplier
		}
		return NewExponential(m)
	case "linear":
		return NewLinear(spec.Increment)
	case "polynomial":
		return NewPolynomial(spec.Exponent)
	case "step":
		return NewStep(spec.StepSize, spec.StepMultiplier)
	case "hybrid":
		early, err := New(spec.Early)
		if err != nil {
			return nil, fmt.Errorf("cost: hybrid early: %w", err)
		}
		late, err := New(spec.Late)
		if err != nil {
			return nil, fmt.Errorf("cost: hybrid late: %w", err)
		}
		return NewHybrid(spec.Threshold, early, late)
	default:
		return nil, fmt.Errorf("cost: unknown strategy kind %q", spec.Kind)
	}
}
