package spawn

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

func TestLookup(t *testing.T) {
	for _, name := range Scenarios() {
		if _, err := Lookup(name); err != nil {
			t.Errorf("registered scenario %q not found: %v", name, err)
		}
	}

	if _, err := Lookup("nebula"); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestScenarioList(t *testing.T) {
	names := Scenarios()
	if len(names) != 5 {
		t.Fatalf("got %d scenarios, want 5: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("scenario list not sorted at %d: %v", i, names)
		}
	}
}

func TestTwoBody(t *testing.T) {
	var seq holon.Sequence
	ps := TwoBody(99, 7, &seq)

	if len(ps) != 2 {
		t.Fatalf("got %d particles, want 2", len(ps))
	}
	if ps[0].ID != "p-000001" || ps[1].ID != "p-000002" {
		t.Errorf("unexpected ids %q, %q", ps[0].ID, ps[1].ID)
	}
	if ps[0].Charge*ps[1].Charge >= 0 {
		t.Error("pair should carry opposite charges")
	}

	net := holon.TotalMomentum(ps)
	if r3.Norm(net) > 1e-12 {
		t.Errorf("net momentum %v, want zero", net)
	}
	for _, p := range ps {
		if p.Level != 0 {
			t.Errorf("particle %s at level %d, want 0", p.ID, p.Level)
		}
		if math.Abs(p.Energy-p.KineticEnergy()) > 1e-12 {
			t.Errorf("particle %s energy not initialized", p.ID)
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, name := range Scenarios() {
		t.Run(name, func(t *testing.T) {
			spawner, err := Lookup(name)
			if err != nil {
				t.Fatalf("lookup failed: %v", err)
			}

			var seqA, seqB holon.Sequence
			a := spawner(20, 42, &seqA)
			b := spawner(20, 42, &seqB)

			if len(a) != len(b) {
				t.Fatalf("population sizes differ: %d vs %d", len(a), len(b))
			}
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("particle %d differs between identical runs", i)
				}
			}
		})
	}
}

func TestRandomBounds(t *testing.T) {
	var seq holon.Sequence
	ps := Random(50, 3, &seq)

	if len(ps) != 50 {
		t.Fatalf("got %d particles, want 50", len(ps))
	}
	var charge float64
	for _, p := range ps {
		for _, c := range []float64{p.Position.X, p.Position.Y, p.Position.Z} {
			if math.Abs(c) > boxHalf {
				t.Fatalf("particle %s outside box: %v", p.ID, p.Position)
			}
		}
		if p.Mass < 1-massJitter || p.Mass > 1+massJitter {
			t.Errorf("mass %v outside jitter band", p.Mass)
		}
		charge += p.Charge
	}
	if math.Abs(charge) > 1 {
		t.Errorf("population charge %v, want near neutral", charge)
	}
}

func TestRandomSeedVariation(t *testing.T) {
	var seqA, seqB holon.Sequence
	a := Random(10, 1, &seqA)
	b := Random(10, 2, &seqB)

	same := true
	for i := range a {
		if a[i].Position != b[i].Position {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical positions")
	}
}

func TestLattice(t *testing.T) {
	var seq holon.Sequence
	ps := Lattice(27, 0, &seq)

	if len(ps) != 27 {
		t.Fatalf("got %d particles, want 27", len(ps))
	}
	seen := make(map[r3.Vec]bool)
	for _, p := range ps {
		if r3.Norm(p.Momentum) != 0 {
			t.Errorf("lattice particle %s not at rest", p.ID)
		}
		if seen[p.Position] {
			t.Errorf("duplicate lattice site %v", p.Position)
		}
		seen[p.Position] = true
	}

	// 3x3x3 grid is symmetric about the origin.
	c := holon.Centroid(ps)
	if r3.Norm(c) > 1e-12 {
		t.Errorf("lattice centroid %v, want origin", c)
	}
}

func TestLatticePartialGrid(t *testing.T) {
	var seq holon.Sequence
	if got := len(Lattice(10, 0, &seq)); got != 10 {
		t.Errorf("got %d particles, want 10", got)
	}
}

func TestShell(t *testing.T) {
	var seq holon.Sequence
	ps := Shell(40, 0, &seq)

	for _, p := range ps {
		r := r3.Norm(p.Position)
		if math.Abs(r-shellRadius) > 1e-9 {
			t.Fatalf("particle %s off the shell: r=%v", p.ID, r)
		}
		// Spin about z never pushes along the radius.
		if dot := r3.Dot(p.Momentum, p.Position); math.Abs(dot) > 1e-9 {
			t.Errorf("momentum of %s has radial component %v", p.ID, dot)
		}
	}
}

func TestCloudCount(t *testing.T) {
	var seq holon.Sequence
	for _, n := range []int{1, 7, 33} {
		if got := len(Cloud(n, 11, &seq)); got != n {
			t.Errorf("cloud spawner returned %d particles, want %d", got, n)
		}
	}
}
