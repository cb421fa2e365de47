package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nvasani/holonsim/internal/drive"
)

const (
	DefaultDt         = 0.016
	DefaultSteps      = 1000
	DefaultParticles  = 24
	DefaultDepth      = 4
	DefaultEmergence  = 0.3
	DefaultDecay      = 0.02
	DefaultActivation = 0.5
	DefaultSync       = 0.1
	DefaultConstraint = 0.05
	DefaultSpring     = 0.1
	DefaultDamping    = 0.05
	DefaultGravity    = 0.8
	DefaultCoupling   = 0.4
)

type Config struct {
	Scenario  string         `yaml:"scenario"`
	Stepper   string         `yaml:"stepper"`
	Dt        float64        `yaml:"dt"`
	Steps     int            `yaml:"steps"`
	Particles int            `yaml:"particles"`
	Seed      int64          `yaml:"seed"`
	Forces    ForcesConfig   `yaml:"forces"`
	Holarchy  HolarchyConfig `yaml:"holarchy"`
	Driver    drive.Spec     `yaml:"driver"`
}

type ForcesConfig struct {
	Spring    float64 `yaml:"spring"`
	Damping   float64 `yaml:"damping"`
	Gravity   float64 `yaml:"gravity"`
	Coupling  float64 `yaml:"coupling"`
	TimeScale float64 `yaml:"time_scale"`
}

type HolarchyConfig struct {
	Depth      int     `yaml:"depth"`
	Emergence  float64 `yaml:"emergence"`
	Decay      float64 `yaml:"decay"`
	Activation float64 `yaml:"activation"`
	Sync       float64 `yaml:"sync"`
	Constraint float64 `yaml:"constraint"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:  "random",
		Stepper:   "verlet",
		Dt:        DefaultDt,
		Steps:     DefaultSteps,
		Particles: DefaultParticles,
		Forces: ForcesConfig{
			Spring:    DefaultSpring,
			Damping:   DefaultDamping,
			Gravity:   DefaultGravity,
			Coupling:  DefaultCoupling,
			TimeScale: 1.0,
		},
		Holarchy: HolarchyConfig{
			Depth:      DefaultDepth,
			Emergence:  DefaultEmergence,
			Decay:      DefaultDecay,
			Activation: DefaultActivation,
			Sync:       DefaultSync,
			Constraint: DefaultConstraint,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Particles <= 0 {
		return fmt.Errorf("particles must be positive, got %d", c.Particles)
	}
	if c.Holarchy.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", c.Holarchy.Depth)
	}
	if c.Holarchy.Emergence <= 0 {
		return fmt.Errorf("emergence threshold must be positive, got %f", c.Holarchy.Emergence)
	}
	if c.Forces.TimeScale <= 0 {
		return fmt.Errorf("time scale must be positive, got %f", c.Forces.TimeScale)
	}
	return nil
}
