package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

// Kinetic returns the summed kinetic energy over the population.
func Kinetic(ps []holon.Particle) float64 {
	ke := 0.0
	for _, p := range ps {
		ke += p.KineticEnergy()
	}
	return ke
}

// Potential returns the spring potential plus the pairwise gravitational and
// coupling potential. Pairs inside the singularity guard are skipped, same
// as in force evaluation, so the reported Hamiltonian matches the forces
// actually applied.
func (f *Field) Potential(ps []holon.Particle) float64 {
	pe := 0.0
	for i := range ps {
		pe += 0.5 * f.Coef.Spring * r3.Norm2(ps[i].Position)

		for j := i + 1; j < len(ps); j++ {
			d := r3.Norm(r3.Sub(ps[j].Position, ps[i].Position))
			if d < MinPairSeparation {
				continue
			}
			pe -= f.Coef.Gravity * ps[i].Mass * ps[j].Mass / d
			pe += f.Coef.Coupling * ps[i].Charge * ps[j].Charge * levelModifier(ps[i].Level, ps[j].Level) / d
		}
	}
	return pe
}

// Energies returns the aggregate triple for one tick.
func (f *Field) Energies(ps []holon.Particle) holon.Energy {
	ke := Kinetic(ps)
	pe := f.Potential(ps)
	return holon.Energy{Kinetic: ke, Potential: pe, Total: ke + pe}
}
