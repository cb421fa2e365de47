package emergence

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

func TestDetectMergesClosePair(t *testing.T) {
	ps := []holon.Particle{
		{ID: "p-000001", Mass: 1, Level: 0, Position: r3.Vec{}},
		{ID: "p-000002", Mass: 1, Level: 0, Position: r3.Vec{X: 0.05}},
	}
	d := NewDetector(0.7, 4)

	out, events := d.Detect(ps, holon.NewSequence())

	if len(out) != 1 {
		t.Fatalf("population = %d, want 1", len(out))
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}

	m := out[0]
	if m.Level != 1 {
		t.Errorf("level = %d, want 1", m.Level)
	}
	if m.Mass != 2.0 {
		t.Errorf("mass = %v, want exactly 2.0", m.Mass)
	}
	if math.Abs(m.Position.X-0.025) > 1e-12 || m.Position.Y != 0 || m.Position.Z != 0 {
		t.Errorf("position = %v, want (0.025,0,0)", m.Position)
	}
	if m.Momentum != (r3.Vec{}) {
		t.Errorf("momentum = %v, want zero", m.Momentum)
	}
	if m.Energy != 0 {
		t.Errorf("energy = %v, want 0", m.Energy)
	}
	if m.Color != holon.LevelColor(1) {
		t.Errorf("color = %s, want the level-1 palette entry", m.Color)
	}
}

func TestDetectConservation(t *testing.T) {
	ps := []holon.Particle{
		{ID: "a", Mass: 1.25, Charge: 0.5, Level: 0, Position: r3.Vec{X: 0.1}, Momentum: r3.Vec{X: 0.2, Y: -0.1}},
		{ID: "b", Mass: 2.75, Charge: -0.25, Level: 0, Position: r3.Vec{X: 0.2}, Momentum: r3.Vec{X: -0.05, Z: 0.3}},
	}
	wantMass := holon.TotalMass(ps)
	wantMom := holon.TotalMomentum(ps)
	wantCharge := ps[0].Charge + ps[1].Charge

	out, _ := NewDetector(1.0, 4).Detect(ps, holon.NewSequence())

	if len(out) != 1 {
		t.Fatalf("population = %d, want 1", len(out))
	}
	if out[0].Mass != wantMass {
		t.Errorf("mass = %v, want exact sum %v", out[0].Mass, wantMass)
	}
	if out[0].Momentum != wantMom {
		t.Errorf("momentum = %v, want exact sum %v", out[0].Momentum, wantMom)
	}
	if out[0].Charge != wantCharge {
		t.Errorf("charge = %v, want %v", out[0].Charge, wantCharge)
	}
	for _, p := range out {
		if p.ID == "a" || p.ID == "b" {
			t.Errorf("merged input %s still present", p.ID)
		}
	}
}

func TestDetectRespectsThresholds(t *testing.T) {
	tests := []struct {
		name string
		ps   []holon.Particle
		want int
	}{
		{
			"separation at threshold",
			[]holon.Particle{
				{Mass: 1, Level: 0},
				{Mass: 1, Level: 0, Position: r3.Vec{X: 0.7}},
			},
			2,
		},
		{
			"closing speed too high",
			[]holon.Particle{
				{Mass: 1, Level: 0, Momentum: r3.Vec{X: 2}},
				{Mass: 1, Level: 0, Position: r3.Vec{X: 0.05}, Momentum: r3.Vec{X: -2}},
			},
			2,
		},
		{
			"different levels",
			[]holon.Particle{
				{Mass: 1, Level: 0},
				{Mass: 1, Level: 1, Position: r3.Vec{X: 0.05}},
			},
			2,
		},
		{
			"level cap",
			[]holon.Particle{
				{Mass: 1, Level: 3},
				{Mass: 1, Level: 3, Position: r3.Vec{X: 0.05}},
			},
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := NewDetector(0.7, 4).Detect(tt.ps, holon.NewSequence())
			if len(out) != tt.want {
				t.Errorf("population = %d, want %d", len(out), tt.want)
			}
		})
	}
}

func TestDetectFirstPairWins(t *testing.T) {
	// Three mutually close particles: 0 pairs with 1, leaving 2 alone.
	ps := []holon.Particle{
		{ID: "x", Mass: 1, Level: 0},
		{ID: "y", Mass: 1, Level: 0, Position: r3.Vec{X: 0.02}},
		{ID: "z", Mass: 1, Level: 0, Position: r3.Vec{X: 0.04}},
	}

	out, events := NewDetector(0.7, 4).Detect(ps, holon.NewSequence())

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].A != "x" || events[0].B != "y" {
		t.Errorf("merged %s+%s, want x+y (ascending index tie-break)", events[0].A, events[0].B)
	}
	if len(out) != 2 {
		t.Fatalf("population = %d, want 2", len(out))
	}
	if out[0].ID != "z" {
		t.Errorf("survivor order wrong: first = %s, want z", out[0].ID)
	}
}

func TestDetectDeterministicIDs(t *testing.T) {
	build := func() []holon.Particle {
		return []holon.Particle{
			{ID: "p-000001", Mass: 1, Level: 0},
			{ID: "p-000002", Mass: 1, Level: 0, Position: r3.Vec{X: 0.01}},
			{ID: "p-000003", Mass: 1, Level: 0, Position: r3.Vec{X: 3}},
			{ID: "p-000004", Mass: 1, Level: 0, Position: r3.Vec{X: 3.01}},
		}
	}

	out1, _ := NewDetector(0.5, 4).Detect(build(), holon.NewSequence())
	out2, _ := NewDetector(0.5, 4).Detect(build(), holon.NewSequence())

	if len(out1) != len(out2) {
		t.Fatalf("runs disagree on population size: %d vs %d", len(out1), len(out2))
	}
	for i := range out1 {
		if out1[i].ID != out2[i].ID {
			t.Errorf("run ids diverge at %d: %s vs %s", i, out1[i].ID, out2[i].ID)
		}
	}
}

func TestDetectInputUntouched(t *testing.T) {
	ps := []holon.Particle{
		{ID: "a", Mass: 1, Level: 0},
		{ID: "b", Mass: 1, Level: 0, Position: r3.Vec{X: 0.05}},
	}

	NewDetector(0.7, 4).Detect(ps, holon.NewSequence())

	if ps[0].ID != "a" || ps[1].ID != "b" || len(ps) != 2 {
		t.Error("detect must not mutate its input slice")
	}
}
