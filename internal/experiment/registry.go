package experiment

import (
	"fmt"
	"sort"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/integrators"
	"github.com/nvasani/holonsim/internal/metrics"
	"github.com/nvasani/holonsim/internal/spawn"
)

type Registry struct {
	steppers map[string]func() integrators.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		steppers: make(map[string]func() integrators.Stepper),
	}

	r.steppers["verlet"] = func() integrators.Stepper { return integrators.NewVelocityVerlet() }
	r.steppers["euler"] = func() integrators.Stepper { return integrators.NewSemiImplicitEuler() }

	return r
}

func (r *Registry) GetStepper(name string) (integrators.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown stepper: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetSpawner(name string) (spawn.Spawner, error) {
	return spawn.Lookup(name)
}

func (r *Registry) ListSteppers() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListScenarios() []string {
	return spawn.Scenarios()
}

func (r *Registry) DefaultMetrics(syncCoef float64) []holon.Metric {
	return metrics.Standard(syncCoef)
}
