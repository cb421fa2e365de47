package drive

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/physics"
)

// Orbit sweeps the attractor around the origin in the xy plane, one
// revolution every 2*pi/Omega seconds of simulated time.
type Orbit struct {
	Radius float64
	Omega  float64
	Mode   physics.Mode
}

func NewOrbit(radius, omega float64) *Orbit {
	return &Orbit{
		Radius: radius,
		Omega:  omega,
		Mode:   physics.ModeAttract,
	}
}

func (o *Orbit) At(t float64) *physics.Attractor {
	phase := o.Omega * t
	return &physics.Attractor{
		Position: r3.Vec{
			X: o.Radius * math.Cos(phase),
			Y: o.Radius * math.Sin(phase),
		},
		Mode: o.Mode,
	}
}

func (o *Orbit) Name() string { return "orbit" }
