package experiment

import (
	"context"
	"testing"

	"github.com/nvasani/holonsim/internal/config"
	"github.com/nvasani/holonsim/internal/logging"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scenario = "two_body"
	cfg.Steps = 20
	return cfg
}

func TestExperimentRun(t *testing.T) {
	exp := New(smallConfig(), logging.Nop())

	if _, err := exp.Run(context.Background()); err == nil {
		t.Fatal("run before setup should fail")
	}

	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 20 {
		t.Errorf("got %d steps, want 20", result.StepsTaken)
	}
	if _, ok := result.Metrics["energy_drift"]; !ok {
		t.Error("default metrics not attached")
	}
}

func TestExperimentUnknownNames(t *testing.T) {
	cfg := smallConfig()
	cfg.Stepper = "rk9"
	if err := New(cfg, logging.Nop()).Setup(); err == nil {
		t.Error("expected error for unknown stepper")
	}

	cfg = smallConfig()
	cfg.Scenario = "galaxy"
	if err := New(cfg, logging.Nop()).Setup(); err == nil {
		t.Error("expected error for unknown scenario")
	}

	cfg = smallConfig()
	cfg.Driver.Kind = "tractor"
	if err := New(cfg, logging.Nop()).Setup(); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRegistryLists(t *testing.T) {
	reg := NewRegistry()

	steppers := reg.ListSteppers()
	if len(steppers) != 2 {
		t.Fatalf("got %d steppers, want 2: %v", len(steppers), steppers)
	}
	for _, name := range steppers {
		if _, err := reg.GetStepper(name); err != nil {
			t.Errorf("listed stepper %q not constructible: %v", name, err)
		}
	}

	if len(reg.ListScenarios()) == 0 {
		t.Error("no scenarios listed")
	}
}
