package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/sim"
)

// Divergence traces how fast a perturbed twin of a run separates from
// the original. A positive Rate means nearby states pull apart, the
// usual chaos signature.
type Divergence struct {
	Times       []float64
	Separations []float64
	Rate        float64
}

// EstimateDivergence runs a population twice, the second time with the
// first particle's x position offset, and measures the phase-space
// separation per tick. After each measurement the twin is pulled back
// to the initial offset so the growth estimate stays local. The trace
// stops early when a fusion breaks the particle pairing.
func EstimateDivergence(ctx context.Context, ps []holon.Particle, opts sim.Options, steps int, delta, offset float64) (*Divergence, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if delta <= 0 {
		return nil, fmt.Errorf("delta must be positive, got %f", delta)
	}
	if offset <= 0 {
		return nil, fmt.Errorf("offset must be positive, got %g", offset)
	}
	if len(ps) == 0 {
		return nil, holon.ErrEmptyPopulation
	}

	perturbed := holon.CloneParticles(ps)
	perturbed[0].Position.X += offset

	base := sim.New(ps, opts)
	twin := sim.New(perturbed, opts)

	out := &Divergence{}
	sumLog := 0.0
	elapsed := 0.0
	prev := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		sa, err := base.Tick(delta)
		if err != nil {
			return out, err
		}
		sb, err := twin.Tick(delta)
		if err != nil {
			return out, err
		}

		if !aligned(sa.Particles, sb.Particles) {
			break
		}

		sep := separation(sa.Particles, sb.Particles)
		out.Times = append(out.Times, sa.Time)
		out.Separations = append(out.Separations, sep)

		if sep > 0 {
			sumLog += math.Log(sep / offset)
			elapsed += sa.Time - prev

			scale := offset / sep
			renorm := holon.CloneParticles(sb.Particles)
			for j := range renorm {
				a := sa.Particles[j]
				renorm[j].Position = r3.Add(a.Position, r3.Scale(scale, r3.Sub(renorm[j].Position, a.Position)))
				renorm[j].Momentum = r3.Add(a.Momentum, r3.Scale(scale, r3.Sub(renorm[j].Momentum, a.Momentum)))
			}
			twin.ReplaceParticles(renorm)
		}
		prev = sa.Time
	}

	if elapsed > 0 {
		out.Rate = sumLog / elapsed
	}
	return out, nil
}

func aligned(a, b []holon.Particle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// separation is the Euclidean distance in full phase space.
func separation(a, b []holon.Particle) float64 {
	sum := 0.0
	for i := range a {
		sum += r3.Norm2(r3.Sub(b[i].Position, a[i].Position))
		sum += r3.Norm2(r3.Sub(b[i].Momentum, a[i].Momentum))
	}
	return math.Sqrt(sum)
}
