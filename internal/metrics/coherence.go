package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/memory"
)

// Coherence averages the snapshot coherence score over a run.
type Coherence struct {
	name    string
	sum     float64
	samples int
}

func NewCoherence() *Coherence {
	return &Coherence{name: "coherence"}
}

func (c *Coherence) Name() string { return c.name }

func (c *Coherence) Observe(s holon.Snapshot) {
	c.sum += s.Coherence
	c.samples++
}

func (c *Coherence) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Coherence) Reset() {
	c.sum = 0
	c.samples = 0
}

// SyncPressure averages the synchronization force magnitude each tick
// would apply across memory nodes. High pressure means peers at the
// same level disagree about where their level should sit.
type SyncPressure struct {
	name    string
	coef    float64
	sum     float64
	samples int
}

func NewSyncPressure(coef float64) *SyncPressure {
	return &SyncPressure{
		name: "sync_pressure",
		coef: coef,
	}
}

func (s *SyncPressure) Name() string { return s.name }

func (s *SyncPressure) Observe(snap holon.Snapshot) {
	s.samples++
	forces := memory.SyncForces(snap.Nodes, s.coef)
	for _, f := range forces {
		s.sum += r3.Norm(f)
	}
}

func (s *SyncPressure) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SyncPressure) Reset() {
	s.sum = 0
	s.samples = 0
}
