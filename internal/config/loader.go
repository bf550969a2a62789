package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, an optional YAML file, and
// the environment, in that order. path may be empty, in which case
// AGENT_CONFIG_FILE is consulted; a missing file at an explicitly given
// path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("AGENT_CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Safety.MaxSteps <= 0 {
		return fmt.Errorf("safety.max_steps must be positive, got %d", c.Safety.MaxSteps)
	}
	if c.Safety.MaxParallelTasks <= 0 {
		return fmt.Errorf("safety.max_parallel_tasks must be positive, got %d", c.Safety.MaxParallelTasks)
	}
	if c.Safety.MaxWait <= 0 {
		return fmt.Errorf("safety.max_wait must be positive, got %v", c.Safety.MaxWait)
	}
	return nil
}
