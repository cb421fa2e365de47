package drive

import (
	"fmt"

	"github.com/nvasani/holonsim/internal/physics"
)

// Driver yields the external attractor for a point in simulated time.
// A nil result means no attractor is active at t.
type Driver interface {
	At(t float64) *physics.Attractor
	Name() string
}

// Spec describes a driver in configs and scripts.
type Spec struct {
	Kind   string  `yaml:"kind"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Mode   string  `yaml:"mode"`
	Radius float64 `yaml:"radius"`
	Omega  float64 `yaml:"omega"`
	Period float64 `yaml:"period"`
	Duty   float64 `yaml:"duty"`
}

// New builds a driver from its spec. An empty kind means no driver.
func New(spec Spec) (Driver, error) {
	mode := physics.ModeAttract
	if spec.Mode != "" {
		mode = physics.Mode(spec.Mode)
	}

	switch spec.Kind {
	case "", "none":
		return None{}, nil
	case "static":
		s := NewStatic(spec.X, spec.Y, spec.Z)
		s.Mode = mode
		return s, nil
	case "orbit":
		o := NewOrbit(spec.Radius, spec.Omega)
		o.Mode = mode
		return o, nil
	case "pulse":
		p := NewPulse(spec.Period, spec.Duty)
		p.Position.X = spec.X
		p.Position.Y = spec.Y
		p.Position.Z = spec.Z
		p.Mode = mode
		return p, nil
	default:
		return nil, fmt.Errorf("unknown driver: %s", spec.Kind)
	}
}

// Kinds lists the driver kinds New accepts.
func Kinds() []string {
	return []string{"none", "static", "orbit", "pulse"}
}

// None is the idle driver.
type None struct{}

func (None) At(t float64) *physics.Attractor { return nil }

func (None) Name() string { return "none" }
