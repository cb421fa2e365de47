package memory

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

// recognizeFloor is the minimum score for a pattern match to count.
const recognizeFloor = 0.1

// Recognize returns the level's best-matching node: the one maximizing
// strength * exp(-distance to the level's current mass-weighted centroid).
// The second return is false when the level has no particles or the best
// score does not clear the floor.
func Recognize(ps []holon.Particle, nodes []holon.Node, level int) (holon.Node, bool) {
	var atLevel []holon.Particle
	for _, p := range ps {
		if p.Level == level {
			atLevel = append(atLevel, p)
		}
	}
	if len(atLevel) == 0 {
		return holon.Node{}, false
	}
	centroid := holon.Centroid(atLevel)

	var best holon.Node
	bestScore := math.Inf(-1)
	found := false
	for _, n := range nodes {
		if n.Level != level {
			continue
		}
		score := n.Strength * math.Exp(-r3.Norm(r3.Sub(n.Position, centroid)))
		if score > bestScore {
			best, bestScore, found = n, score, true
		}
	}

	if !found || bestScore <= recognizeFloor {
		return holon.Node{}, false
	}
	return best.Clone(), true
}

// Coherence scores how well current particle positions align with their
// level's memory: the mean of exp(-distance)*strength over every (node,
// same-level particle) pair, 0 when either side is empty.
func Coherence(ps []holon.Particle, nodes []holon.Node) float64 {
	if len(ps) == 0 || len(nodes) == 0 {
		return 0
	}

	sum := 0.0
	pairs := 0
	for _, n := range nodes {
		for _, p := range ps {
			if p.Level != n.Level {
				continue
			}
			sum += math.Exp(-r3.Norm(r3.Sub(n.Position, p.Position))) * n.Strength
			pairs++
		}
	}

	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}
