package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvasani/holonsim/internal/config"
	"github.com/nvasani/holonsim/internal/drive"
	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/physics"
	"github.com/nvasani/holonsim/internal/sim"
)

// Experiment assembles a full run from a config: spawner, stepper,
// driver, engine, metrics. Setup resolves names, Run executes.
type Experiment struct {
	cfg    *config.Config
	reg    *Registry
	engine *sim.Engine
	log    *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) *Experiment {
	return &Experiment{
		cfg: cfg,
		reg: NewRegistry(),
		log: log,
	}
}

// Options maps a config onto engine options. Exposed so sweeps and
// scripts can derive variants without a full Experiment.
func Options(cfg *config.Config, log *slog.Logger) (sim.Options, error) {
	stepper, err := NewRegistry().GetStepper(cfg.Stepper)
	if err != nil {
		return sim.Options{}, err
	}
	driver, err := drive.New(cfg.Driver)
	if err != nil {
		return sim.Options{}, err
	}

	return sim.Options{
		Coefficients: physics.Coefficients{
			Spring:    cfg.Forces.Spring,
			Damping:   cfg.Forces.Damping,
			Gravity:   cfg.Forces.Gravity,
			Coupling:  cfg.Forces.Coupling,
			TimeScale: cfg.Forces.TimeScale,
		},
		Stepper:    stepper,
		Driver:     driver,
		Emergence:  cfg.Holarchy.Emergence,
		Depth:      cfg.Holarchy.Depth,
		Decay:      cfg.Holarchy.Decay,
		Activation: cfg.Holarchy.Activation,
		Sync:       cfg.Holarchy.Sync,
		Constraint: cfg.Holarchy.Constraint,
		Logger:     log,
	}, nil
}

// Population spawns the configured starting particles, returning them
// with the sequence they were drawn from.
func Population(cfg *config.Config) ([]holon.Particle, holon.Sequence, error) {
	spawner, err := NewRegistry().GetSpawner(cfg.Scenario)
	if err != nil {
		return nil, holon.Sequence{}, err
	}
	var seq holon.Sequence
	ps := spawner(cfg.Particles, cfg.Seed, &seq)
	if len(ps) == 0 {
		return nil, holon.Sequence{}, holon.ErrEmptyPopulation
	}
	return ps, seq, nil
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	opts, err := Options(e.cfg, e.log)
	if err != nil {
		return err
	}
	ps, seq, err := Population(e.cfg)
	if err != nil {
		return err
	}
	opts.Sequence = seq

	e.engine = sim.New(ps, opts)
	for _, m := range e.reg.DefaultMetrics(e.cfg.Holarchy.Sync) {
		e.engine.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.engine == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.engine.Run(ctx, e.cfg.Steps, e.cfg.Dt)
}

// Engine returns the underlying engine for adding observers.
func (e *Experiment) Engine() *sim.Engine {
	return e.engine
}
