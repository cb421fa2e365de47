// Package integrators advances particle populations through time.
//
//   - [VelocityVerlet]: symplectic second-order scheme, the default
//   - [SemiImplicitEuler]: symplectic first-order baseline for comparisons
//
// Steppers never mutate their input; each Step returns a fresh slice.
package integrators

import (
	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/physics"
)

// Stepper advances a population by dt under the field's forces.
type Stepper interface {
	Step(ps []holon.Particle, field *physics.Field, att *physics.Attractor, dt float64) []holon.Particle
	Name() string
}
