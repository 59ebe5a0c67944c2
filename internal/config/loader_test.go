package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sigfuzz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validManifest = `
target:
  command: ["./target", "--in=___FILE___"]
corpus:
  inputDir: seeds
  maxInputSize: 128KiB
run:
  workers: 2
  workDir: out
  fileExtension: fuzz
  flipRate: 0.05
metrics:
  listen: "127.0.0.1:9921"
log:
  level: debug
  format: json
`

func TestLoadValidManifest(t *testing.T) {
	path := writeManifest(t, validManifest)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"./target", "--in=___FILE___"}, cfg.Target.Command)
	require.Equal(t, DefaultPlaceholder, cfg.Target.Placeholder)
	require.Equal(t, 2, cfg.Run.Workers)
	require.Equal(t, "posix", cfg.Run.Backend)
	require.EqualValues(t, 128*1024, cfg.Corpus.MaxInputBytes)

	base := filepath.Dir(path)
	require.Equal(t, filepath.Join(base, "out"), cfg.Run.WorkDir)
	require.Equal(t, filepath.Join(base, "seeds"), cfg.Corpus.InputDir)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeManifest(t, `
target:
  command: ["./target"]
corpus:
  inputDir: seeds
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.GreaterOrEqual(t, cfg.Run.Workers, 1)
	require.Equal(t, "fuzz", cfg.Run.FileExtension)
	require.Equal(t, "posix", cfg.Run.Backend)
	require.Equal(t, filepath.Dir(path), cfg.Run.WorkDir)
	require.Zero(t, cfg.Corpus.MaxInputBytes)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeManifest(t, `
target:
  command: ["./target"]
  bogus: true
corpus:
  inputDir: seeds
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema validation failed")
}

func TestLoadRejectsMissingCommand(t *testing.T) {
	path := writeManifest(t, `
target: {}
corpus:
  inputDir: seeds
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadFlipRate(t *testing.T) {
	path := writeManifest(t, `
target:
  command: ["./target"]
corpus:
  inputDir: seeds
run:
  flipRate: 1.5
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadInputSize(t *testing.T) {
	path := writeManifest(t, strings.ReplaceAll(validManifest, "128KiB", "a lot"))
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "maxInputSize")
}

func TestValidateFlipRateBounds(t *testing.T) {
	cfg := &Config{
		Target: Target{Command: []string{"t"}},
		Corpus: Corpus{InputDir: "seeds"},
		Run:    Run{Workers: 1, FlipRate: -0.1},
	}
	require.Error(t, cfg.Validate())

	cfg.Run.FlipRate = 0
	require.NoError(t, cfg.Validate())
}

func TestContextMirrorsManifest(t *testing.T) {
	cfg := &Config{
		Target: Target{
			Command:       []string{"./t", "@@"},
			Placeholder:   "@@",
			FuzzFromStdin: true,
		},
		Run: Run{
			WorkDir:       "/out",
			FileExtension: "fuzz",
			FlipRate:      0,
			Verifier:      true,
		},
	}
	ctx := cfg.Context()
	require.Equal(t, "/out", ctx.WorkDir)
	require.Equal(t, "@@", ctx.Placeholder)
	require.True(t, ctx.FuzzFromStdin)
	require.True(t, ctx.ReplayMode())

	// The context owns its own copy of the template.
	ctx.CommandTemplate[0] = "changed"
	require.Equal(t, "./t", cfg.Target.Command[0])
}
