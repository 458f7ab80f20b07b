// Package config loads optional runtime limits and trace toggles for the
// interpreter from a TOML file, the way lookbusy1344's arm_emulator config
// package loads emulator settings: a defaulted struct that Load overlays
// with whatever the file on disk actually sets.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds the interpreter's optional runtime settings. Every field has
// a usable zero-friendly default from Default, so a missing or partial
// config file never prevents a run.
type Config struct {
	Execution struct {
		// MaxInstructions caps the number of instructions a run may
		// execute before it is aborted as runaway. Zero means unlimited.
		MaxInstructions uint64 `toml:"max_instructions"`
		// StackDepth caps the number of live call frames.
		StackDepth int `toml:"stack_depth"`
	} `toml:"execution"`

	Trace struct {
		// Enabled, when true, makes the executor log each dispatched
		// instruction to stderr before running it.
		Enabled bool `toml:"enabled"`
	} `toml:"trace"`
}

// Default returns a Config with the interpreter's built-in limits: one
// million instructions and a thousand live frames, tracing off.
func Default() *Config {
	cfg := &Config{}
	cfg.Execution.MaxInstructions = 1_000_000
	cfg.Execution.StackDepth = 1000
	cfg.Trace.Enabled = false
	return cfg
}

// Load reads a Config from path, starting from Default and overlaying
// whatever the TOML file sets. A missing file is not an error: Load returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: failed to parse %s", path)
	}
	return cfg, nil
}
