package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/drive"
	"github.com/nvasani/holonsim/internal/emergence"
	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/integrators"
	"github.com/nvasani/holonsim/internal/memory"
	"github.com/nvasani/holonsim/internal/physics"
)

// Engine advances a holarchy tick by tick. It owns all simulation
// state; callers interact through Tick, Run and the setters, never by
// mutating returned snapshots.
type Engine struct {
	h        Holarchy
	field    *physics.Field
	stepper  integrators.Stepper
	driver   drive.Driver
	detector *emergence.Detector
	updater  memory.Updater

	constraint float64
	sync       float64

	log       *slog.Logger
	metrics   []holon.Metric
	observers []holon.Observer
}

// New builds an engine over a starting population. The population is
// cloned, so the caller's slice stays untouched.
func New(ps []holon.Particle, opts Options) *Engine {
	opts = opts.normalized()
	return &Engine{
		h: Holarchy{
			Particles: holon.CloneParticles(ps),
			Seq:       opts.Sequence,
		},
		field:      physics.NewField(opts.Coefficients),
		stepper:    opts.Stepper,
		driver:     opts.Driver,
		detector:   opts.detector(),
		updater:    opts.updater(),
		constraint: opts.Constraint,
		sync:       opts.Sync,
		log:        opts.Logger,
	}
}

func (e *Engine) AddMetric(m holon.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o holon.Observer) { e.observers = append(e.observers, o) }

// Coefficients returns the live force coefficients.
func (e *Engine) Coefficients() physics.Coefficients {
	return e.field.Coef
}

// SetCoefficients retunes the force field between ticks.
func (e *Engine) SetCoefficients(c physics.Coefficients) {
	if c.TimeScale == 0 {
		c.TimeScale = 1
	}
	e.field.Coef = c
}

// SetDriver swaps the attractor driver between ticks.
func (e *Engine) SetDriver(d drive.Driver) {
	if d == nil {
		d = drive.None{}
	}
	e.driver = d
}

// SetParticles replaces the population and drops the memory tree, so
// the next tick rebuilds it. Step and time keep counting.
func (e *Engine) SetParticles(ps []holon.Particle) {
	e.h.Particles = holon.CloneParticles(ps)
	e.h.Nodes = nil
}

// ReplaceParticles swaps the population but keeps the memory tree.
// For small state corrections that preserve ids and levels; anything
// else wants SetParticles.
func (e *Engine) ReplaceParticles(ps []holon.Particle) {
	e.h.Particles = holon.CloneParticles(ps)
}

// Snapshot returns the current state without advancing it.
func (e *Engine) Snapshot() holon.Snapshot {
	return holon.Snapshot{
		Step:      e.h.Step,
		Time:      e.h.Time,
		Particles: e.h.Particles,
		Nodes:     e.h.Nodes,
		Energy:    e.field.Energies(e.h.Particles),
		Coherence: memory.Coherence(e.h.Particles, e.h.Nodes),
	}
}

// SyncForces exposes the synchronization pull between peer nodes of
// the current tree. Diagnostic only, never fed back into the step.
func (e *Engine) SyncForces() map[string]r3.Vec {
	return memory.SyncForces(e.h.Nodes, e.sync)
}

// Recognize finds the memory node best matching the current population
// at a level.
func (e *Engine) Recognize(level int) (holon.Node, bool) {
	return memory.Recognize(e.h.Particles, e.h.Nodes, level)
}

// Tick advances the holarchy by one frame. delta is wall time and is
// clamped to MaxDelta; the integration step is delta scaled by the
// configured TimeScale. On error the state is left exactly as it was.
func (e *Engine) Tick(delta float64) (holon.Snapshot, error) {
	if delta <= 0 {
		return holon.Snapshot{}, &holon.TickError{
			Step: e.h.Step,
			Time: e.h.Time,
			Err:  fmt.Errorf("non-positive delta %v", delta),
		}
	}
	if delta > MaxDelta {
		delta = MaxDelta
	}
	dt := delta * e.field.Coef.TimeScale

	// Top-down constraints from the current tree enter the field as an
	// extra per-particle force for this tick only.
	constraints := memory.ConstraintForces(e.h.Particles, e.h.Nodes, e.constraint)
	e.field.Extra = func(p holon.Particle) r3.Vec { return constraints[p.ID] }
	defer func() { e.field.Extra = nil }()

	next := e.stepper.Step(e.h.Particles, e.field, e.driver.At(e.h.Time), dt)

	for i := range next {
		if !next[i].Valid() {
			return holon.Snapshot{}, &holon.TickError{
				Step: e.h.Step,
				Time: e.h.Time,
				Err:  holon.ErrInvalidParticle,
			}
		}
	}

	merged, events := e.detector.Detect(next, &e.h.Seq)
	if len(events) > 0 {
		e.log.Debug("fusion", "step", e.h.Step, "events", len(events), "population", len(merged))
	}

	if len(e.h.Nodes) == 0 {
		e.h.Nodes = memory.Build(merged, e.detector.Depth, &e.h.Seq)
	} else {
		e.h.Nodes = e.updater.Update(e.h.Nodes, merged, dt)
	}

	e.h.Particles = merged
	e.h.Step++
	e.h.Time += dt

	snap := holon.Snapshot{
		Step:      e.h.Step,
		Time:      e.h.Time,
		Particles: merged,
		Nodes:     e.h.Nodes,
		Energy:    e.field.Energies(merged),
		Coherence: memory.Coherence(merged, e.h.Nodes),
		Merges:    len(events),
	}

	for _, m := range e.metrics {
		m.Observe(snap)
	}
	for _, o := range e.observers {
		o.OnTick(snap)
	}

	return snap, nil
}

// Run ticks the engine steps times with a fixed delta and collects the
// series. Metrics are reset first, so a Result always describes one
// run. On a tick error the partial result is returned with the error.
func (e *Engine) Run(ctx context.Context, steps int, delta float64) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if delta <= 0 {
		return nil, fmt.Errorf("delta must be positive, got %f", delta)
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	result := &Result{
		Steps:       make([]int, 0, steps),
		Times:       make([]float64, 0, steps),
		Kinetics:    make([]float64, 0, steps),
		Potentials:  make([]float64, 0, steps),
		Energies:    make([]float64, 0, steps),
		Populations: make([]int, 0, steps),
		NodeCounts:  make([]int, 0, steps),
		Coherences:  make([]float64, 0, steps),
		Merges:      make([]int, 0, steps),
		Metrics:     make(map[string]float64),
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		snap, err := e.Tick(delta)
		if err != nil {
			e.finish(result)
			return result, err
		}

		result.Steps = append(result.Steps, snap.Step)
		result.Times = append(result.Times, snap.Time)
		result.Kinetics = append(result.Kinetics, snap.Energy.Kinetic)
		result.Potentials = append(result.Potentials, snap.Energy.Potential)
		result.Energies = append(result.Energies, snap.Energy.Total)
		result.Populations = append(result.Populations, len(snap.Particles))
		result.NodeCounts = append(result.NodeCounts, len(snap.Nodes))
		result.Coherences = append(result.Coherences, snap.Coherence)
		result.Merges = append(result.Merges, snap.Merges)
		result.Final = snap
		result.StepsTaken++
	}

	e.finish(result)
	return result, nil
}

// RunWithCallback ticks until steps run out or the callback returns
// false. Used by streaming consumers that do not want a Result.
func (e *Engine) RunWithCallback(ctx context.Context, steps int, delta float64, callback func(holon.Snapshot) bool) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	if delta <= 0 {
		return fmt.Errorf("delta must be positive, got %f", delta)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap, err := e.Tick(delta)
		if err != nil {
			return err
		}
		if !callback(snap) {
			return nil
		}
	}
	return nil
}

func (e *Engine) finish(result *Result) {
	if n := len(result.Energies); n > 1 && result.Energies[0] != 0 {
		first, last := result.Energies[0], result.Energies[n-1]
		result.EnergyDrift = math.Abs(last-first) / math.Abs(first)
	}
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
