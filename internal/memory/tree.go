package memory

import (
	"sort"

	"github.com/nvasani/holonsim/internal/holon"
)

// Build creates the initial memory forest from a particle snapshot: one
// node per populated level below depth, positioned at the level's
// mass-weighted centroid with the level's particle ids as children and the
// summed particle energy as activation. Nodes are created in ascending
// level order; each node's parent is the most recently created node with a
// strictly lower level, and the parent's children gain the node's id.
func Build(ps []holon.Particle, depth int, seq *holon.Sequence) []holon.Node {
	byLevel := make(map[int][]holon.Particle)
	for _, p := range ps {
		if p.Level >= depth {
			continue
		}
		byLevel[p.Level] = append(byLevel[p.Level], p)
	}

	levels := make([]int, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	nodes := make([]holon.Node, 0, len(levels))
	for _, l := range levels {
		group := byLevel[l]
		children := make([]string, len(group))
		activation := 0.0
		for i, p := range group {
			children[i] = p.ID
			activation += p.Energy
		}
		nodes = append(nodes, holon.Node{
			ID:         seq.NextNode(),
			Level:      l,
			Position:   holon.Centroid(group),
			Children:   children,
			Activation: activation,
			Strength:   1,
		})
	}

	// Creation order is ascending level, so the backwards scan finds the
	// nearest populated lower level.
	for i := 1; i < len(nodes); i++ {
		for j := i - 1; j >= 0; j-- {
			if nodes[j].Level < nodes[i].Level {
				nodes[i].Parent = nodes[j].ID
				nodes[j].Children = append(nodes[j].Children, nodes[i].ID)
				break
			}
		}
	}

	return nodes
}
