package sim

import (
	"log/slog"

	"github.com/nvasani/holonsim/internal/drive"
	"github.com/nvasani/holonsim/internal/emergence"
	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/integrators"
	"github.com/nvasani/holonsim/internal/logging"
	"github.com/nvasani/holonsim/internal/memory"
	"github.com/nvasani/holonsim/internal/physics"
)

// MaxDelta caps the wall time a single tick may absorb. Larger deltas
// are clamped, never split, so a stalled host cannot blow up the
// integration.
const MaxDelta = 0.05

// Holarchy is the whole mutable simulation state: the population, the
// memory tree over it, and the id source. Every tick reads and
// replaces state here; there is no package-level state anywhere.
type Holarchy struct {
	Particles []holon.Particle
	Nodes     []holon.Node
	Seq       holon.Sequence
	Step      int
	Time      float64
}

// Options assemble an engine. Zero-value fields fall back to the
// defaults applied by New.
type Options struct {
	Coefficients physics.Coefficients
	Stepper      integrators.Stepper
	Driver       drive.Driver
	Emergence    float64        // fusion threshold for separation and closing speed
	Depth        int            // hierarchy levels, fusion stops one below
	Decay        float64        // memory decay rate per second
	Activation   float64        // activation threshold carried on the updater
	Sync         float64        // synchronization coupling between peer nodes
	Constraint   float64        // top-down constraint coupling
	Sequence     holon.Sequence // id source, pass the one the spawner drew from
	Logger       *slog.Logger
}

func (o Options) normalized() Options {
	if o.Stepper == nil {
		o.Stepper = integrators.NewVelocityVerlet()
	}
	if o.Driver == nil {
		o.Driver = drive.None{}
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Depth <= 0 {
		o.Depth = 4
	}
	if o.Emergence <= 0 {
		o.Emergence = 0.3
	}
	if o.Coefficients.TimeScale == 0 {
		o.Coefficients.TimeScale = 1
	}
	return o
}

func (o Options) detector() *emergence.Detector {
	return emergence.NewDetector(o.Emergence, o.Depth)
}

func (o Options) updater() memory.Updater {
	return memory.Updater{Decay: o.Decay, Activation: o.Activation}
}

// Result collects the series and summary scalars of one run. Energies
// holds the total; Kinetics and Potentials break it down.
type Result struct {
	Steps       []int
	Times       []float64
	Kinetics    []float64
	Potentials  []float64
	Energies    []float64
	Populations []int
	NodeCounts  []int
	Coherences  []float64
	Merges      []int
	Final       holon.Snapshot
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
}
