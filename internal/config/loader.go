package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a fuzzing manifest from the provided path, validates it against
// the embedded schema and resolves paths relative to the manifest directory.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%s: parse: %w", absPath, err)
	}
	if err := validateAgainstSchema(generic); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	cfg.ApplyDefaults()

	baseDir := filepath.Dir(absPath)
	cfg.Run.WorkDir = resolvePath(baseDir, os.ExpandEnv(cfg.Run.WorkDir))
	cfg.Corpus.InputDir = resolvePath(baseDir, os.ExpandEnv(cfg.Corpus.InputDir))
	if cfg.Log.File != "" {
		cfg.Log.File = resolvePath(baseDir, os.ExpandEnv(cfg.Log.File))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &cfg, nil
}

func resolvePath(base, path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}
