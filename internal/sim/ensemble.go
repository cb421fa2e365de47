package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/nvasani/holonsim/internal/holon"
)

// RunSpec is one cell of an ensemble: an engine blueprint plus its
// starting population and schedule. Populations are cloned per run, so
// specs may share one slice.
type RunSpec struct {
	Label     string
	Options   Options
	Particles []holon.Particle
	Steps     int
	Delta     float64
	Metrics   func() []holon.Metric
}

// RunOutcome pairs a spec with what happened when it ran.
type RunOutcome struct {
	Spec   RunSpec
	Result *Result
	Err    error
}

// RunMany executes specs on a bounded worker pool. Outcomes line up
// with specs by index regardless of completion order.
func RunMany(ctx context.Context, specs []RunSpec, workers int) []RunOutcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(specs) {
		workers = len(specs)
	}

	outcomes := make([]RunOutcome, len(specs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				spec := specs[idx]

				eng := New(spec.Particles, spec.Options)
				if spec.Metrics != nil {
					for _, m := range spec.Metrics() {
						eng.AddMetric(m)
					}
				}

				result, err := eng.Run(ctx, spec.Steps, spec.Delta)
				outcomes[idx] = RunOutcome{Spec: spec, Result: result, Err: err}
			}
		}()
	}

	for i := range specs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// Grid declares candidate values per tunable parameter.
type Grid struct {
	Names  []string
	Values [][]float64
}

// Expand returns the cartesian product of the grid in deterministic
// order, first name varying slowest.
func (g Grid) Expand() []map[string]float64 {
	var cells []map[string]float64
	g.expand(0, make(map[string]float64), &cells)
	return cells
}

func (g Grid) expand(depth int, current map[string]float64, cells *[]map[string]float64) {
	if depth == len(g.Names) {
		cell := make(map[string]float64, len(current))
		for k, v := range current {
			cell[k] = v
		}
		*cells = append(*cells, cell)
		return
	}

	for _, v := range g.Values[depth] {
		current[g.Names[depth]] = v
		g.expand(depth+1, current, cells)
	}
}

// SweepParams lists the parameter names a grid may tune.
func SweepParams() []string {
	names := []string{
		"spring", "damping", "gravity", "coupling", "timescale",
		"emergence", "decay", "sync", "constraint",
	}
	sort.Strings(names)
	return names
}

func applyParam(opts *Options, name string, v float64) bool {
	switch name {
	case "spring":
		opts.Coefficients.Spring = v
	case "damping":
		opts.Coefficients.Damping = v
	case "gravity":
		opts.Coefficients.Gravity = v
	case "coupling":
		opts.Coefficients.Coupling = v
	case "timescale":
		opts.Coefficients.TimeScale = v
	case "emergence":
		opts.Emergence = v
	case "decay":
		opts.Decay = v
	case "sync":
		opts.Sync = v
	case "constraint":
		opts.Constraint = v
	default:
		return false
	}
	return true
}

func cellLabel(names []string, cell map[string]float64) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, cell[name]))
	}
	return strings.Join(parts, " ")
}

// SweepResult holds every grid cell outcome plus the index of the best
// cell, -1 when no cell finished with the requested metric.
type SweepResult struct {
	Outcomes []RunOutcome
	Best     int
}

// Sweep runs a parameter grid over a base spec and picks the cell
// optimizing the named metric.
func Sweep(ctx context.Context, base RunSpec, grid Grid, metric string, maximize bool, workers int) (*SweepResult, error) {
	if len(grid.Names) != len(grid.Values) {
		return nil, fmt.Errorf("grid has %d names but %d value lists", len(grid.Names), len(grid.Values))
	}

	cells := grid.Expand()
	specs := make([]RunSpec, len(cells))
	for i, cell := range cells {
		spec := base
		for name, v := range cell {
			if !applyParam(&spec.Options, name, v) {
				return nil, fmt.Errorf("unknown parameter: %s", name)
			}
		}
		spec.Label = cellLabel(grid.Names, cell)
		specs[i] = spec
	}

	outcomes := RunMany(ctx, specs, workers)

	best := -1
	bestVal := math.Inf(1)
	if maximize {
		bestVal = math.Inf(-1)
	}
	for i, oc := range outcomes {
		if oc.Err != nil || oc.Result == nil {
			continue
		}
		v, ok := oc.Result.Metrics[metric]
		if !ok {
			continue
		}
		if (maximize && v > bestVal) || (!maximize && v < bestVal) {
			best, bestVal = i, v
		}
	}

	return &SweepResult{Outcomes: outcomes, Best: best}, nil
}
