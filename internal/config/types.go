// Package config loads and validates the fuzzing manifest.
package config

import (
	"fmt"
	"runtime"

	units "github.com/docker/go-units"

	"github.com/mkrein/sigfuzz/internal/fuzz"
	"github.com/mkrein/sigfuzz/internal/logging"
)

// DefaultPlaceholder is the file-placeholder token substituted into the
// command template when no other token is configured.
const DefaultPlaceholder = "___FILE___"

// Config is the root of the fuzzing manifest.
type Config struct {
	Target  Target         `yaml:"target"`
	Corpus  Corpus         `yaml:"corpus"`
	Run     Run            `yaml:"run"`
	Metrics Metrics        `yaml:"metrics"`
	Log     logging.Config `yaml:"log"`
}

// Target describes the program under test.
type Target struct {
	// Command is the argument vector; arguments may contain Placeholder.
	Command []string `yaml:"command"`
	// Placeholder is the file-placeholder token; defaults to
	// DefaultPlaceholder.
	Placeholder string `yaml:"placeholder"`
	// FuzzFromStdin delivers the input on the child's standard input and
	// disables placeholder substitution.
	FuzzFromStdin bool `yaml:"fuzzFromStdin"`
	// InheritStdout passes target output through instead of discarding it.
	InheritStdout bool `yaml:"inheritStdout"`
}

// Corpus describes where candidate inputs come from.
type Corpus struct {
	// InputDir is scanned for seed files.
	InputDir string `yaml:"inputDir"`
	// MaxInputSize caps seed sizes, e.g. "128KiB". Empty disables the cap.
	MaxInputSize string `yaml:"maxInputSize"`

	// MaxInputBytes is MaxInputSize resolved to bytes during Load.
	MaxInputBytes int64 `yaml:"-"`
}

// Run holds engine-level settings.
type Run struct {
	// Workers is the number of concurrent fuzzing lanes.
	Workers int `yaml:"workers"`
	// WorkDir receives crash artifacts and scratch inputs.
	WorkDir string `yaml:"workDir"`
	// FileExtension is appended to saved artifact names.
	FileExtension string `yaml:"fileExtension"`
	// FlipRate is the mutation rate; exactly zero together with Verifier
	// selects replay mode.
	FlipRate float64 `yaml:"flipRate"`
	// Verifier keeps replayed artifacts under their original names.
	Verifier bool `yaml:"verifier"`
	// Backend selects the supervision backend.
	Backend string `yaml:"backend"`
}

// Metrics configures the optional Prometheus listener.
type Metrics struct {
	// Listen is the address for /metrics; empty disables the listener.
	Listen string `yaml:"listen"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Target.Placeholder == "" {
		c.Target.Placeholder = DefaultPlaceholder
	}
	if c.Run.Workers == 0 {
		c.Run.Workers = runtime.NumCPU()
	}
	if c.Run.WorkDir == "" {
		c.Run.WorkDir = "."
	}
	if c.Run.FileExtension == "" {
		c.Run.FileExtension = "fuzz"
	}
	if c.Run.Backend == "" {
		c.Run.Backend = "posix"
	}
}

// Validate checks the manifest beyond what the schema can express and
// resolves human-readable quantities.
func (c *Config) Validate() error {
	if len(c.Target.Command) == 0 {
		return fmt.Errorf("target.command must not be empty")
	}
	if c.Corpus.InputDir == "" {
		return fmt.Errorf("corpus.inputDir is required")
	}
	if c.Run.Workers < 1 {
		return fmt.Errorf("run.workers must be positive, got %d", c.Run.Workers)
	}
	if c.Run.FlipRate < 0 || c.Run.FlipRate > 1 {
		return fmt.Errorf("run.flipRate must be within [0, 1], got %g", c.Run.FlipRate)
	}
	if c.Corpus.MaxInputSize != "" {
		bytes, err := units.RAMInBytes(c.Corpus.MaxInputSize)
		if err != nil {
			return fmt.Errorf("corpus.maxInputSize: invalid quantity %q: %w", c.Corpus.MaxInputSize, err)
		}
		if bytes <= 0 {
			return fmt.Errorf("corpus.maxInputSize: %q must be positive", c.Corpus.MaxInputSize)
		}
		c.Corpus.MaxInputBytes = bytes
	}
	return nil
}

// Context builds the shared engine context described by the manifest.
func (c *Config) Context() *fuzz.Context {
	return &fuzz.Context{
		WorkDir:         c.Run.WorkDir,
		FileExtension:   c.Run.FileExtension,
		CommandTemplate: append([]string(nil), c.Target.Command...),
		Placeholder:     c.Target.Placeholder,
		FuzzFromStdin:   c.Target.FuzzFromStdin,
		InheritStdout:   c.Target.InheritStdout,
		FlipRate:        c.Run.FlipRate,
		Verifier:        c.Run.Verifier,
	}
}
