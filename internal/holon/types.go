package holon

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is a point mass in extended phase space. Position and Momentum
// are the dynamical state; Mass, Charge and Level shape the forces acting
// on it. Energy is the particle's own kinetic energy, refreshed each tick
// for display and memory activation only, never read by the dynamics.
type Particle struct {
	ID       string
	Position r3.Vec
	Momentum r3.Vec
	Mass     float64
	Charge   float64
	Level    int
	Energy   float64
	Color    string
}

// KineticEnergy returns |p|^2 / 2m.
func (p Particle) KineticEnergy() float64 {
	return r3.Norm2(p.Momentum) / (2 * p.Mass)
}

// Velocity returns p/m.
func (p Particle) Velocity() r3.Vec {
	return r3.Scale(1/p.Mass, p.Momentum)
}

// Valid reports whether the particle state is finite and the mass invariant
// holds.
func (p Particle) Valid() bool {
	if p.Mass <= 0 || math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) {
		return false
	}
	for _, v := range []float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Momentum.X, p.Momentum.Y, p.Momentum.Z,
		p.Charge, p.Energy,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Node is a memory summary of one holarchy level: a mass-weighted centroid
// with a confidence that decays unless reinforced by matching particles.
// Parent and Children are weak references by id; stale entries are ignored
// by lookups rather than repaired.
type Node struct {
	ID         string
	Level      int
	Position   r3.Vec
	Children   []string
	Parent     string
	Activation float64
	Strength   float64
}

// HasChild reports whether id is registered as a child.
func (n Node) HasChild(id string) bool {
	for _, c := range n.Children {
		if c == id {
			return true
		}
	}
	return false
}

// Clone returns a copy with its own Children slice.
func (n Node) Clone() Node {
	out := n
	out.Children = append([]string(nil), n.Children...)
	return out
}

// Energy is the aggregate energy triple for one tick.
type Energy struct {
	Kinetic   float64
	Potential float64
	Total     float64
}

// Snapshot is the per-tick output. The engine builds a fresh one every tick
// and never mutates the slices afterwards, so holders may read them without
// copying but must not write through them.
type Snapshot struct {
	Step      int
	Time      float64
	Particles []Particle
	Nodes     []Node
	Energy    Energy
	Coherence float64
	Merges    int
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

// Observer receives every snapshot as it is produced.
type Observer interface {
	OnTick(s Snapshot)
}

// Centroid returns the mass-weighted centroid of the particles, or the zero
// vector for an empty slice.
func Centroid(ps []Particle) r3.Vec {
	var sum r3.Vec
	var mass float64
	for _, p := range ps {
		sum = r3.Add(sum, r3.Scale(p.Mass, p.Position))
		mass += p.Mass
	}
	if mass == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/mass, sum)
}

// TotalMomentum returns the vector sum of all momenta.
func TotalMomentum(ps []Particle) r3.Vec {
	var sum r3.Vec
	for _, p := range ps {
		sum = r3.Add(sum, p.Momentum)
	}
	return sum
}

// TotalMass returns the summed mass.
func TotalMass(ps []Particle) float64 {
	var m float64
	for _, p := range ps {
		m += p.Mass
	}
	return m
}

// CloneParticles returns a shallow copy of the slice. Particle itself has no
// reference fields, so this is a full copy.
func CloneParticles(ps []Particle) []Particle {
	return append([]Particle(nil), ps...)
}

// CloneNodes deep-copies the slice including each node's Children.
func CloneNodes(ns []Node) []Node {
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = n.Clone()
	}
	return out
}
