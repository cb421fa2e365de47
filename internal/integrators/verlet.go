package integrators

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/physics"
)

// VelocityVerlet is the reference scheme. It is symplectic, so total energy
// stays bounded over long undamped runs instead of drifting monotonically.
type VelocityVerlet struct {
	f0 []r3.Vec
	f1 []r3.Vec
}

func NewVelocityVerlet() *VelocityVerlet {
	return &VelocityVerlet{}
}

func (v *VelocityVerlet) Name() string { return "verlet" }

func (v *VelocityVerlet) ensureScratch(n int) {
	if cap(v.f0) < n {
		v.f0 = make([]r3.Vec, n)
		v.f1 = make([]r3.Vec, n)
	}
	v.f0 = v.f0[:n]
	v.f1 = v.f1[:n]
}

func (v *VelocityVerlet) Step(ps []holon.Particle, field *physics.Field, att *physics.Attractor, dt float64) []holon.Particle {
	n := len(ps)
	next := holon.CloneParticles(ps)
	if n == 0 || dt <= 0 {
		return next
	}
	v.ensureScratch(n)

	for i := range ps {
		v.f0[i] = field.ForceOn(i, ps, att)
	}

	dt2 := dt * dt
	for i := range next {
		p := &next[i]
		invM := 1 / p.Mass
		p.Position = r3.Add(p.Position, r3.Add(
			r3.Scale(dt*invM, p.Momentum),
			r3.Scale(0.5*dt2*invM, v.f0[i]),
		))
	}

	// Trial evaluation: advanced positions, pre-step momenta. Damping reads
	// the old momentum here on purpose; the scheme is not re-iterated.
	for i := range next {
		v.f1[i] = field.ForceOn(i, next, att)
	}

	halfDt := 0.5 * dt
	for i := range next {
		p := &next[i]
		p.Momentum = r3.Add(p.Momentum, r3.Scale(halfDt, r3.Add(v.f0[i], v.f1[i])))
		p.Energy = p.KineticEnergy()
	}

	return next
}
