// Package emergence merges close, co-moving, same-level particle pairs into
// single higher-level particles.
package emergence

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

// Detector holds the merge thresholds. Separation bounds the pair distance
// and Closing bounds relative momentum over combined mass; the stock
// configuration feeds one emergence threshold into both.
type Detector struct {
	Separation float64
	Closing    float64
	Depth      int
}

// NewDetector applies the single configured threshold to both criteria.
func NewDetector(threshold float64, depth int) *Detector {
	return &Detector{Separation: threshold, Closing: threshold, Depth: depth}
}

// Merge records one merge event for logging and metrics.
type Merge struct {
	A, B  string
	Into  string
	Level int
}

// Detect scans unordered pairs in ascending index order and merges the
// first qualifying partner each particle finds; consumed particles never
// pair again in the same pass. The result lists survivors in input order
// followed by merge products in creation order.
func (d *Detector) Detect(ps []holon.Particle, seq *holon.Sequence) ([]holon.Particle, []Merge) {
	n := len(ps)
	consumed := make([]bool, n)

	var products []holon.Particle
	var events []Merge

	for i := 0; i < n; i++ {
		if consumed[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			if consumed[j] {
				continue
			}
			a, b := ps[i], ps[j]
			if a.Level != b.Level || a.Level >= d.Depth-1 {
				continue
			}
			if r3.Norm(r3.Sub(a.Position, b.Position)) >= d.Separation {
				continue
			}
			closing := r3.Norm(r3.Sub(a.Momentum, b.Momentum)) / (a.Mass + b.Mass)
			if closing >= d.Closing {
				continue
			}

			consumed[i], consumed[j] = true, true
			child := fuse(a, b, seq)
			products = append(products, child)
			events = append(events, Merge{A: a.ID, B: b.ID, Into: child.ID, Level: child.Level})
			break
		}
	}

	out := make([]holon.Particle, 0, n-len(events))
	for i := range ps {
		if !consumed[i] {
			out = append(out, ps[i])
		}
	}
	out = append(out, products...)

	return out, events
}

// fuse builds the composite: mass, momentum and charge sum; the position is
// the mass-weighted centroid; the level rises by one and the kinetic energy
// display field starts at zero.
func fuse(a, b holon.Particle, seq *holon.Sequence) holon.Particle {
	mass := a.Mass + b.Mass
	level := a.Level + 1
	return holon.Particle{
		ID:   seq.NextParticle(),
		Mass: mass,
		Position: r3.Scale(1/mass, r3.Add(
			r3.Scale(a.Mass, a.Position),
			r3.Scale(b.Mass, b.Position),
		)),
		Momentum: r3.Add(a.Momentum, b.Momentum),
		Charge:   a.Charge + b.Charge,
		Level:    level,
		Energy:   0,
		Color:    holon.LevelColor(level),
	}
}
