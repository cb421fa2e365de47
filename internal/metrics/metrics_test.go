package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
)

func snapWithEnergy(total float64) holon.Snapshot {
	return holon.Snapshot{Energy: holon.Energy{Total: total}}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(snapWithEnergy(10))
	m.Observe(snapWithEnergy(10.5))
	m.Observe(snapWithEnergy(9.8))

	if math.Abs(m.Value()-0.05) > 1e-12 {
		t.Errorf("got drift %v, want 0.05", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEnergyDriftZeroBaseline(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(snapWithEnergy(0))
	m.Observe(snapWithEnergy(3))

	if m.Value() != 0 {
		t.Errorf("drift undefined for zero baseline, got %v", m.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()

	balanced := holon.Snapshot{Particles: []holon.Particle{
		{Mass: 1, Momentum: r3.Vec{X: 1}},
		{Mass: 1, Momentum: r3.Vec{X: -1}},
	}}
	shifted := holon.Snapshot{Particles: []holon.Particle{
		{Mass: 1, Momentum: r3.Vec{X: 1.3}},
		{Mass: 1, Momentum: r3.Vec{X: -1}},
	}}

	m.Observe(balanced)
	m.Observe(shifted)
	m.Observe(balanced)

	if math.Abs(m.Value()-0.3) > 1e-12 {
		t.Errorf("got drift %v, want 0.3", m.Value())
	}
}

func TestCoherenceMean(t *testing.T) {
	m := NewCoherence()

	if m.Value() != 0 {
		t.Error("expected zero before any observation")
	}

	m.Observe(holon.Snapshot{Coherence: 0.2})
	m.Observe(holon.Snapshot{Coherence: 0.4})

	if math.Abs(m.Value()-0.3) > 1e-12 {
		t.Errorf("got mean %v, want 0.3", m.Value())
	}
}

func TestMaxLevel(t *testing.T) {
	m := NewMaxLevel()

	m.Observe(holon.Snapshot{Particles: []holon.Particle{{Level: 0}, {Level: 2}}})
	m.Observe(holon.Snapshot{Particles: []holon.Particle{{Level: 1}}})

	if m.Value() != 2 {
		t.Errorf("got max level %v, want 2", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMergeCount(t *testing.T) {
	m := NewMergeCount()

	m.Observe(holon.Snapshot{Merges: 2})
	m.Observe(holon.Snapshot{Merges: 0})
	m.Observe(holon.Snapshot{Merges: 3})

	if m.Value() != 5 {
		t.Errorf("got %v merges, want 5", m.Value())
	}
}

func TestContainment(t *testing.T) {
	m := NewContainment(1)

	if m.Value() != 1 {
		t.Error("expected full containment before observations")
	}

	inside := holon.Snapshot{Particles: []holon.Particle{{Mass: 1, Position: r3.Vec{X: 0.5}}}}
	outside := holon.Snapshot{Particles: []holon.Particle{{Mass: 1, Position: r3.Vec{X: 2}}}}

	m.Observe(inside)
	m.Observe(outside)

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("got containment %v, want 0.5", m.Value())
	}
}

func TestSyncPressure(t *testing.T) {
	m := NewSyncPressure(2)

	snap := holon.Snapshot{Nodes: []holon.Node{
		{ID: "a", Level: 0, Strength: 1},
		{ID: "b", Level: 0, Strength: 1, Position: r3.Vec{X: 2}},
	}}

	m.Observe(snap)

	// Each node feels 2*1*1/2 = 1; two nodes over one sample.
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("got pressure %v, want 2", m.Value())
	}

	m.Observe(holon.Snapshot{})
	if math.Abs(m.Value()-1) > 1e-12 {
		t.Errorf("got pressure %v after idle tick, want 1", m.Value())
	}
}

func TestStandardSetNames(t *testing.T) {
	set := Standard(0.1)

	seen := make(map[string]bool)
	for _, m := range set {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
	for _, want := range []string{"energy_drift", "coherence", "merge_count"} {
		if !seen[want] {
			t.Errorf("standard set missing %q", want)
		}
	}
}
