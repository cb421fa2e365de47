package memory

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

// ConstraintForces computes the top-down pull of higher-level nodes on
// particles: for every node whose level strictly exceeds the particle's,
// the particle is drawn toward it with magnitude
// strength*node.Strength/(1+levelGap). The caller folds the result into
// the force field when top-down coupling is enabled.
func ConstraintForces(ps []holon.Particle, nodes []holon.Node, strength float64) map[string]r3.Vec {
	forces := make(map[string]r3.Vec)

	for _, p := range ps {
		var total r3.Vec
		touched := false
		for _, n := range nodes {
			if n.Level <= p.Level {
				continue
			}
			sep := r3.Sub(n.Position, p.Position)
			d := r3.Norm(sep)
			if d < minNodeSeparation {
				continue
			}
			mag := strength * n.Strength / (1 + float64(n.Level-p.Level))
			total = r3.Add(total, r3.Scale(mag/d, sep))
			touched = true
		}
		if touched {
			forces[p.ID] = total
		}
	}

	return forces
}
