package memory

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

// PruneThreshold removes a node once decay has driven its strength this low.
const PruneThreshold = 0.01

const (
	reinforceGain = 0.1
	learnRate     = 0.01
)

// Updater advances memory nodes each tick. Activation is carried
// configuration for hosts that gate on it; the update rules here do not
// read it.
type Updater struct {
	Decay      float64
	Activation float64
}

// Update decays every node, reinforces and re-centers those with matching
// particles, and prunes what has faded. The input slices are never
// modified.
func (u Updater) Update(nodes []holon.Node, ps []holon.Particle, dt float64) []holon.Node {
	out := make([]holon.Node, 0, len(nodes))

	for _, n := range nodes {
		n = n.Clone()
		n.Strength *= 1 - u.Decay*dt

		matches := matching(n, ps)
		if len(matches) > 0 {
			centroid := holon.Centroid(matches)
			sim := math.Exp(-r3.Norm(r3.Sub(centroid, n.Position)))
			n.Strength = math.Min(1, n.Strength+sim*reinforceGain)
			n.Position = r3.Add(n.Position, r3.Scale(learnRate, r3.Sub(centroid, n.Position)))

			activation := 0.0
			for _, p := range matches {
				activation += p.Energy
			}
			n.Activation = activation
		}

		if n.Strength > PruneThreshold {
			out = append(out, n)
		}
	}

	return out
}

// matching returns the particles the node reinforces from: its registered
// children plus everything currently at its level.
func matching(n holon.Node, ps []holon.Particle) []holon.Particle {
	var out []holon.Particle
	for _, p := range ps {
		if p.Level == n.Level || n.HasChild(p.ID) {
			out = append(out, p)
		}
	}
	return out
}
