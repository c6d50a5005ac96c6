// Package config loads the optional YAML configuration file. Every
// field has a usable default; command-line flags override whatever the
// file sets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Machine  MachineConfig  `yaml:"machine"`
	Profile  ProfileConfig  `yaml:"profile"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type MachineConfig struct {
	// StepLimit bounds a run in executed instructions; 0 means no
	// bound.
	StepLimit uint64 `yaml:"step_limit"`
	// Input and Output redirect the machine console. Empty means the
	// process stdin/stdout.
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Trace  bool   `yaml:"trace"`
}

type ProfileConfig struct {
	Enabled bool `yaml:"enabled"`
	// Timing clocks each instruction individually. Counts alone are
	// nearly free; timing roughly doubles interpreter overhead.
	Timing bool `yaml:"timing"`
}

type SnapshotConfig struct {
	Path       string `yaml:"path"`
	SaveOnHalt bool   `yaml:"save_on_halt"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Snapshot: SnapshotConfig{Path: "machine.json"},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads path on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}
