package drive

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/physics"
)

// Static holds the attractor at a fixed point.
type Static struct {
	Position r3.Vec
	Mode     physics.Mode
}

func NewStatic(x, y, z float64) *Static {
	return &Static{
		Position: r3.Vec{X: x, Y: y, Z: z},
		Mode:     physics.ModeAttract,
	}
}

func (s *Static) At(t float64) *physics.Attractor {
	return &physics.Attractor{Position: s.Position, Mode: s.Mode}
}

func (s *Static) Name() string { return "static" }
