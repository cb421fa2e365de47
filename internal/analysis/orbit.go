package analysis

import (
	"context"
	"fmt"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/sim"
)

// Orbit is one particle's trace through a chosen plane.
type Orbit struct {
	ID     string
	Plane  string
	Points []struct{ X, Y float64 }
}

// Planes lists the projections TraceOrbit accepts. xy and xz cut
// position space, phase plots x against the x momentum.
func Planes() []string { return []string{"phase", "xy", "xz"} }

// TraceOrbit runs a population and records where particle id moves in
// the chosen plane. The trace ends early if the particle fuses into a
// composite.
func TraceOrbit(ctx context.Context, ps []holon.Particle, opts sim.Options, steps int, delta float64, id, plane string) (*Orbit, error) {
	switch plane {
	case "xy", "xz", "phase":
	default:
		return nil, fmt.Errorf("unknown plane: %s", plane)
	}

	found := false
	for _, p := range ps {
		if p.ID == id {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown particle: %s", id)
	}

	orbit := &Orbit{
		ID:     id,
		Plane:  plane,
		Points: make([]struct{ X, Y float64 }, 0, steps),
	}

	eng := sim.New(ps, opts)
	err := eng.RunWithCallback(ctx, steps, delta, func(s holon.Snapshot) bool {
		for _, p := range s.Particles {
			if p.ID != id {
				continue
			}
			var pt struct{ X, Y float64 }
			switch plane {
			case "xy":
				pt.X, pt.Y = p.Position.X, p.Position.Y
			case "xz":
				pt.X, pt.Y = p.Position.X, p.Position.Z
			case "phase":
				pt.X, pt.Y = p.Position.X, p.Momentum.X
			}
			orbit.Points = append(orbit.Points, pt)
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return orbit, nil
}
