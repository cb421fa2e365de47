// Package batch runs scripted sequences and Monte Carlo ensembles of
// holarchy simulations.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvasani/holonsim/internal/config"
	"github.com/nvasani/holonsim/internal/experiment"
	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/sim"
	"github.com/nvasani/holonsim/internal/storage"
)

// Script defines a scripted simulation sequence.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Runs        []Run  `yaml:"runs"`
}

// Run is a single entry in a script. Unset fields fall back to the
// preset, or to the defaults when no preset is named.
type Run struct {
	Label     string             `yaml:"label"`
	Preset    string             `yaml:"preset"`
	Scenario  string             `yaml:"scenario"`
	Stepper   string             `yaml:"stepper"`
	Steps     int                `yaml:"steps"`
	Particles int                `yaml:"particles"`
	Seed      int64              `yaml:"seed"`
	Dt        float64            `yaml:"dt"`
	Params    map[string]float64 `yaml:"params"`
	Save      bool               `yaml:"save"`
}

// Load reads a script from a YAML file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}

	return &script, nil
}

// Resolve expands a script entry into a full config. Presets are named
// "scenario/name" and copied before overrides apply.
func Resolve(r Run) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		scenario, name, ok := strings.Cut(r.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be scenario/name, got %q", r.Preset)
		}
		p := config.GetPreset(scenario, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
		clone := *p
		cfg = &clone
	}

	if r.Scenario != "" {
		cfg.Scenario = r.Scenario
	}
	if r.Stepper != "" {
		cfg.Stepper = r.Stepper
	}
	if r.Steps > 0 {
		cfg.Steps = r.Steps
	}
	if r.Particles > 0 {
		cfg.Particles = r.Particles
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}
	if r.Dt > 0 {
		cfg.Dt = r.Dt
	}

	for name, v := range r.Params {
		if err := applyParam(cfg, name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "spring":
		cfg.Forces.Spring = v
	case "damping":
		cfg.Forces.Damping = v
	case "gravity":
		cfg.Forces.Gravity = v
	case "coupling":
		cfg.Forces.Coupling = v
	case "timescale":
		cfg.Forces.TimeScale = v
	case "emergence":
		cfg.Holarchy.Emergence = v
	case "decay":
		cfg.Holarchy.Decay = v
	case "sync":
		cfg.Holarchy.Sync = v
	case "constraint":
		cfg.Holarchy.Constraint = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// Outcome is what one script entry produced. RunID is empty unless the
// entry asked to be saved.
type Outcome struct {
	Label  string
	RunID  string
	Result *sim.Result
}

// RunScript executes all entries in a script in order, saving the
// flagged ones to store. Entries run against fresh engines; a failure
// stops the script and returns the outcomes gathered so far.
func RunScript(ctx context.Context, script *Script, store *storage.Store, log *slog.Logger) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(script.Runs))

	for i, r := range script.Runs {
		cfg, err := Resolve(r)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		label := r.Label
		if label == "" {
			label = fmt.Sprintf("%s-%d", cfg.Scenario, i+1)
		}
		log.Info("script run", "script", script.Name, "label", label, "run", i+1, "total", len(script.Runs))

		exp := experiment.New(cfg, log)
		if err := exp.Setup(); err != nil {
			return outcomes, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		oc := Outcome{Label: label, Result: result}
		if r.Save && store != nil {
			driver := cfg.Driver.Kind
			if driver == "" {
				driver = "none"
			}
			id, err := store.Save(storage.RunInfo{
				Scenario:  cfg.Scenario,
				Stepper:   cfg.Stepper,
				Driver:    driver,
				Seed:      cfg.Seed,
				Dt:        cfg.Dt,
				Particles: cfg.Particles,
			}, result)
			if err != nil {
				return outcomes, fmt.Errorf("run %d save: %w", i+1, err)
			}
			oc.RunID = id
		}

		outcomes = append(outcomes, oc)
	}

	return outcomes, nil
}

// MonteCarlo perturbs a base population and runs many trials.
type MonteCarlo struct {
	Base         *config.Config
	Perturbation float64
	Trials       int
	Seed         int64
	Radius       float64
	Workers      int
}

// Trial holds one perturbed run. Stable means every surviving particle
// finished inside the radius bound.
type Trial struct {
	ID     int
	Stable bool
	Result *sim.Result
	Err    error
}

// RunMonteCarlo executes mc.Trials perturbed copies of the base config
// on a worker pool.
func RunMonteCarlo(ctx context.Context, mc MonteCarlo, log *slog.Logger) ([]Trial, error) {
	if mc.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", mc.Trials)
	}
	cfg := mc.Base
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	opts, err := experiment.Options(cfg, log)
	if err != nil {
		return nil, err
	}
	base, seq, err := experiment.Population(cfg)
	if err != nil {
		return nil, err
	}
	opts.Sequence = seq

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	specs := make([]sim.RunSpec, mc.Trials)
	for t := range specs {
		ps := holon.CloneParticles(base)
		for i := range ps {
			ps[i].Position.X += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			ps[i].Position.Y += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			ps[i].Position.Z += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}
		specs[t] = sim.RunSpec{
			Label:     fmt.Sprintf("trial-%03d", t),
			Options:   opts,
			Particles: ps,
			Steps:     cfg.Steps,
			Delta:     cfg.Dt,
		}
	}

	radius := mc.Radius
	if radius <= 0 {
		radius = 1e6
	}

	outcomes := sim.RunMany(ctx, specs, mc.Workers)
	trials := make([]Trial, len(outcomes))
	for i, oc := range outcomes {
		trials[i] = Trial{ID: i, Err: oc.Err}
		if oc.Err != nil || oc.Result == nil {
			continue
		}
		trials[i].Result = oc.Result
		trials[i].Stable = bounded(oc.Result.Final, radius)
	}

	stable, unstable := CountStable(trials)
	log.Info("monte carlo complete", "trials", len(trials), "stable", stable, "unstable", unstable)
	return trials, nil
}

func bounded(snap holon.Snapshot, radius float64) bool {
	for _, p := range snap.Particles {
		pos := p.Position
		if pos.X > radius || pos.X < -radius ||
			pos.Y > radius || pos.Y < -radius ||
			pos.Z > radius || pos.Z < -radius {
			return false
		}
	}
	return true
}

// CountStable splits trials into stable and unstable counts. Errored
// trials count as unstable.
func CountStable(trials []Trial) (stable int, unstable int) {
	for _, t := range trials {
		if t.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
