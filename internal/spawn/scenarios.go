package spawn

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

const (
	boxHalf     = 5.0
	shellRadius = 4.0
	massJitter  = 0.2
)

// TwoBody places an opposite-charge pair on a slow orbit. The pair
// spirals inward under damping until it fuses, so it doubles as the
// smallest emergence demo. n and seed are ignored.
func TwoBody(n int, seed int64, seq *holon.Sequence) []holon.Particle {
	ps := []holon.Particle{
		{Position: r3.Vec{X: 0.6}, Momentum: r3.Vec{Y: -0.8}, Mass: 1, Charge: 1},
		{Position: r3.Vec{X: -0.6}, Momentum: r3.Vec{Y: 0.8}, Mass: 1, Charge: -1},
	}
	return finish(ps, seq)
}

// Random scatters n particles uniformly in a cube.
func Random(n int, seed int64, seq *holon.Sequence) []holon.Particle {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]holon.Particle, n)
	for i := range ps {
		ps[i] = holon.Particle{
			Position: randomVec(rng, boxHalf),
			Momentum: randomVec(rng, 0.2),
			Mass:     1 - massJitter + 2*massJitter*rng.Float64(),
			Charge:   alternatingCharge(i),
		}
	}
	return finish(ps, seq)
}

// Lattice arranges n particles on a cubic grid centered at the origin,
// at rest and with charges alternating through the grid.
func Lattice(n int, seed int64, seq *holon.Sequence) []holon.Particle {
	side := int(math.Ceil(math.Cbrt(float64(n))))
	if side < 1 {
		side = 1
	}
	const spacing = 1.5
	offset := spacing * float64(side-1) / 2

	ps := make([]holon.Particle, 0, n)
	for x := 0; x < side && len(ps) < n; x++ {
		for y := 0; y < side && len(ps) < n; y++ {
			for z := 0; z < side && len(ps) < n; z++ {
				ps = append(ps, holon.Particle{
					Position: r3.Vec{
						X: spacing*float64(x) - offset,
						Y: spacing*float64(y) - offset,
						Z: spacing*float64(z) - offset,
					},
					Mass:   1,
					Charge: alternatingCharge(x + y + z),
				})
			}
		}
	}
	return finish(ps, seq)
}

// Shell distributes n particles on a sphere by golden-spiral spacing
// and gives the whole shell a slow spin about z.
func Shell(n int, seed int64, seq *holon.Sequence) []holon.Particle {
	if n <= 0 {
		return nil
	}
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	const omega = 0.2

	ps := make([]holon.Particle, n)
	for i := range ps {
		z := 1 - 2*(float64(i)+0.5)/float64(n)
		ring := math.Sqrt(1 - z*z)
		phi := goldenAngle * float64(i)

		q := r3.Scale(shellRadius, r3.Vec{
			X: ring * math.Cos(phi),
			Y: ring * math.Sin(phi),
			Z: z,
		})
		ps[i] = holon.Particle{
			Position: q,
			Momentum: r3.Vec{X: -omega * q.Y, Y: omega * q.X},
			Mass:     1,
			Charge:   alternatingCharge(i),
		}
	}
	return finish(ps, seq)
}

// Cloud rejection-samples a Perlin density field, giving the blob
// lumpy, organic structure. Sampling is bounded so the spawner always
// returns exactly n particles.
func Cloud(n int, seed int64, seq *holon.Sequence) []holon.Particle {
	rng := rand.New(rand.NewSource(seed))
	noise := perlin.NewPerlin(2, 2, 3, seed)

	ps := make([]holon.Particle, 0, n)
	for attempts := 0; len(ps) < n; attempts++ {
		q := randomVec(rng, boxHalf)
		density := (noise.Noise3D(q.X/boxHalf, q.Y/boxHalf, q.Z/boxHalf) + 1) / 2
		if attempts < 64*n && rng.Float64() > density {
			continue
		}
		ps = append(ps, holon.Particle{
			Position: q,
			Momentum: randomVec(rng, 0.1),
			Mass:     1 - massJitter + 2*massJitter*rng.Float64(),
			Charge:   alternatingCharge(len(ps)),
		})
	}
	return finish(ps, seq)
}

func randomVec(rng *rand.Rand, half float64) r3.Vec {
	return r3.Vec{
		X: (2*rng.Float64() - 1) * half,
		Y: (2*rng.Float64() - 1) * half,
		Z: (2*rng.Float64() - 1) * half,
	}
}
