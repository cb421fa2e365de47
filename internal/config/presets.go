package config

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]map[string]*Config{
	"two_body": {
		"orbit": preset(func(c *Config) {
			c.Scenario = "two_body"
			c.Forces.Damping = 0
		}),
		"decay": preset(func(c *Config) {
			c.Scenario = "two_body"
			c.Forces.Damping = 0.2
		}),
	},
	"random": {
		"calm": preset(func(c *Config) {
			c.Scenario = "random"
			c.Forces.Coupling = 0.1
			c.Forces.Gravity = 0.3
		}),
		"stormy": preset(func(c *Config) {
			c.Scenario = "random"
			c.Forces.Gravity = 1.6
			c.Forces.Coupling = 0.8
			c.Forces.TimeScale = 2.0
		}),
		"frozen": preset(func(c *Config) {
			c.Scenario = "random"
			c.Forces.Damping = 0.5
		}),
	},
	"lattice": {
		"crystal": preset(func(c *Config) {
			c.Scenario = "lattice"
			c.Particles = 27
			c.Forces.Spring = 0.4
			c.Forces.Damping = 0.3
		}),
		"melt": preset(func(c *Config) {
			c.Scenario = "lattice"
			c.Particles = 27
			c.Forces.Spring = 0
			c.Forces.Gravity = 1.5
		}),
	},
	"shell": {
		"spin": preset(func(c *Config) {
			c.Scenario = "shell"
			c.Particles = 40
			c.Forces.Damping = 0.02
		}),
		"collapse": preset(func(c *Config) {
			c.Scenario = "shell"
			c.Particles = 40
			c.Forces.Spring = 0
			c.Forces.Gravity = 2.0
			c.Forces.Damping = 0
		}),
	},
	"cloud": {
		"nebula": preset(func(c *Config) {
			c.Scenario = "cloud"
			c.Seed = 7
		}),
		"dense": preset(func(c *Config) {
			c.Scenario = "cloud"
			c.Particles = 64
			c.Holarchy.Emergence = 0.5
		}),
	},
}

func GetPreset(scenario, name string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	return names
}
