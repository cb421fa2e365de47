package memory

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

// minNodeSeparation guards the 1/d terms in node-space forces.
const minNodeSeparation = 0.01

// SyncForces computes the pairwise attraction inside each level group of
// two or more nodes: each node is pulled toward every peer with magnitude
// strength*Si*Sj/d. Spatial coupling only; there is no phase variable.
func SyncForces(nodes []holon.Node, strength float64) map[string]r3.Vec {
	byLevel := make(map[int][]holon.Node)
	for _, n := range nodes {
		byLevel[n.Level] = append(byLevel[n.Level], n)
	}

	forces := make(map[string]r3.Vec)
	for _, group := range byLevel {
		if len(group) < 2 {
			continue
		}
		for i := range group {
			for j := range group {
				if i == j {
					continue
				}
				sep := r3.Sub(group[j].Position, group[i].Position)
				d := r3.Norm(sep)
				if d < minNodeSeparation {
					continue
				}
				mag := strength * group[i].Strength * group[j].Strength / d
				forces[group[i].ID] = r3.Add(forces[group[i].ID], r3.Scale(mag/d, sep))
			}
		}
	}

	return forces
}
