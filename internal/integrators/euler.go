package integrators

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/physics"
)

// SemiImplicitEuler kicks momenta with the current force and then drifts
// positions with the kicked momenta. First-order; kept as the cheap baseline
// the compare and bench commands measure Verlet against.
type SemiImplicitEuler struct {
	f []r3.Vec
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "euler" }

func (e *SemiImplicitEuler) Step(ps []holon.Particle, field *physics.Field, att *physics.Attractor, dt float64) []holon.Particle {
	n := len(ps)
	next := holon.CloneParticles(ps)
	if n == 0 || dt <= 0 {
		return next
	}
	if cap(e.f) < n {
		e.f = make([]r3.Vec, n)
	}
	e.f = e.f[:n]

	for i := range ps {
		e.f[i] = field.ForceOn(i, ps, att)
	}

	for i := range next {
		p := &next[i]
		p.Momentum = r3.Add(p.Momentum, r3.Scale(dt, e.f[i]))
		p.Position = r3.Add(p.Position, r3.Scale(dt/p.Mass, p.Momentum))
		p.Energy = p.KineticEnergy()
	}

	return next
}
