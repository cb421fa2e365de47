package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

// MinPairSeparation is the singularity guard: pairs closer than this
// contribute neither force nor potential.
const MinPairSeparation = 0.1

// Attractor deadband and gain. Outside (attractorNear, attractorFar) the
// attractor exerts nothing.
const (
	attractorNear = 0.1
	attractorFar  = 10.0
	attractorGain = 5.0
)

// Coefficients are the interaction constants the host supplies each tick.
type Coefficients struct {
	Spring    float64
	Damping   float64
	Gravity   float64
	Coupling  float64
	TimeScale float64
}

// Mode tags an attractor. Only attract and repel contribute force; spawn
// and destroy are population edits handled by the host.
type Mode string

const (
	ModeAttract Mode = "attract"
	ModeRepel   Mode = "repel"
	ModeSpawn   Mode = "spawn"
	ModeDestroy Mode = "destroy"
)

// Attractor is an external influence point, typically driven by a pointer
// or a scripted driver.
type Attractor struct {
	Position r3.Vec
	Mode     Mode
}

// ForceOn returns the attractor's pull or push on p, zero outside the
// deadband and for non-force modes.
func (a *Attractor) ForceOn(p holon.Particle) r3.Vec {
	sep := r3.Sub(a.Position, p.Position)
	d := r3.Norm(sep)
	if d <= attractorNear || d >= attractorFar {
		return r3.Vec{}
	}
	mag := attractorGain / (d * d)
	switch a.Mode {
	case ModeAttract:
		return r3.Scale(mag/d, sep)
	case ModeRepel:
		return r3.Scale(-mag/d, sep)
	}
	return r3.Vec{}
}

// Field evaluates the net force on particles. Extra, when set, injects an
// additional per-particle force (the engine uses it for top-down memory
// constraints).
type Field struct {
	Coef  Coefficients
	Extra func(holon.Particle) r3.Vec
}

func NewField(c Coefficients) *Field {
	return &Field{Coef: c}
}

// ForceOn accumulates every force acting on ps[i]: central spring, damping,
// pairwise gravity and charge coupling over the rest of the population, the
// optional attractor, and the Extra hook. Iteration is ascending by index so
// accumulation order is reproducible.
func (f *Field) ForceOn(i int, ps []holon.Particle, att *Attractor) r3.Vec {
	p := ps[i]

	force := r3.Scale(-f.Coef.Spring, p.Position)
	force = r3.Add(force, r3.Scale(-f.Coef.Damping/p.Mass, p.Momentum))

	for j := range ps {
		if j == i {
			continue
		}
		force = r3.Add(force, f.pairForce(p, ps[j]))
	}

	if att != nil {
		force = r3.Add(force, att.ForceOn(p))
	}
	if f.Extra != nil {
		force = r3.Add(force, f.Extra(p))
	}
	return force
}

// pairForce is the gravity plus level-modulated charge coupling a exerts on
// itself from b. Like charges repel; the holarchic modifier weakens coupling
// across levels.
func (f *Field) pairForce(a, b holon.Particle) r3.Vec {
	sep := r3.Sub(b.Position, a.Position)
	d := r3.Norm(sep)
	if d < MinPairSeparation {
		return r3.Vec{}
	}
	dir := r3.Scale(1/d, sep)

	grav := f.Coef.Gravity * a.Mass * b.Mass / (d * d)
	coul := f.Coef.Coupling * a.Charge * b.Charge * levelModifier(a.Level, b.Level) / (d * d)

	return r3.Scale(grav-coul, dir)
}

// levelModifier is 1 for same-level pairs and falls off with level distance.
func levelModifier(a, b int) float64 {
	if a == b {
		return 1.0
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return 0.5 / (1.0 + float64(d))
}
