package drive

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/physics"
)

// Pulse switches the attractor on for the first Duty fraction of every
// Period and off for the rest. Duty outside (0,1] falls back to a half
// cycle.
type Pulse struct {
	Position r3.Vec
	Period   float64
	Duty     float64
	Mode     physics.Mode
}

func NewPulse(period, duty float64) *Pulse {
	if period <= 0 {
		period = 1
	}
	if duty <= 0 || duty > 1 {
		duty = 0.5
	}
	return &Pulse{
		Period: period,
		Duty:   duty,
		Mode:   physics.ModeAttract,
	}
}

func (p *Pulse) At(t float64) *physics.Attractor {
	if math.Mod(t, p.Period) >= p.Duty*p.Period {
		return nil
	}
	return &physics.Attractor{Position: p.Position, Mode: p.Mode}
}

func (p *Pulse) Name() string { return "pulse" }
