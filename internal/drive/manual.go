package drive

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/physics"
)

// Manual exposes the attractor to interactive callers. Used by the live
// view, where the pointer sets the position and keys flip the mode. The
// driver is idle until armed.
type Manual struct {
	pos   r3.Vec
	mode  physics.Mode
	armed bool
}

func NewManual() *Manual {
	return &Manual{mode: physics.ModeAttract}
}

// Set arms the driver at a position.
func (m *Manual) Set(x, y, z float64) {
	m.pos = r3.Vec{X: x, Y: y, Z: z}
	m.armed = true
}

// SetMode changes what the attractor does without moving it.
func (m *Manual) SetMode(mode physics.Mode) {
	m.mode = mode
}

// Release disarms the driver.
func (m *Manual) Release() {
	m.armed = false
}

func (m *Manual) At(t float64) *physics.Attractor {
	if !m.armed {
		return nil
	}
	return &physics.Attractor{Position: m.pos, Mode: m.mode}
}

func (m *Manual) Name() string { return "manual" }
