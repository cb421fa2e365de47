package spawn

import (
	"fmt"
	"sort"

	"github.com/nvasani/holonsim/internal/holon"
)

// Spawner builds the level-0 population for a scenario.
type Spawner func(n int, seed int64, seq *holon.Sequence) []holon.Particle

var spawners = map[string]Spawner{
	"two_body": TwoBody,
	"random":   Random,
	"lattice":  Lattice,
	"shell":    Shell,
	"cloud":    Cloud,
}

// Lookup resolves a scenario name.
func Lookup(name string) (Spawner, error) {
	s, ok := spawners[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return s, nil
}

// Scenarios lists registered scenario names in sorted order.
func Scenarios() []string {
	names := make([]string, 0, len(spawners))
	for name := range spawners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// alternatingCharge keeps the population globally near-neutral.
func alternatingCharge(i int) float64 {
	if i%2 == 0 {
		return 1
	}
	return -1
}

// finish stamps ids, level-0 bookkeeping and initial energies.
func finish(ps []holon.Particle, seq *holon.Sequence) []holon.Particle {
	for i := range ps {
		ps[i].ID = seq.NextParticle()
		ps[i].Level = 0
		ps[i].Color = holon.LevelColor(0)
		ps[i].Energy = ps[i].KineticEnergy()
	}
	return ps
}
