//go:build linux

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// End-to-end replay pass: every seed is run once against a crashing target
// and its artifact keeps the seed's name.
func TestRunReplayPass(t *testing.T) {
	dir := t.TempDir()
	seedDir := filepath.Join(dir, "seeds")
	require.NoError(t, os.Mkdir(seedDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "seed1"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "seed2"), []byte("b"), 0o600))

	workDir := filepath.Join(dir, "out")
	path := writeManifest(t, dir, `
target:
  command: ["/bin/sh", "-c", "kill -ABRT $$"]
corpus:
  inputDir: seeds
run:
  workers: 1
  workDir: out
  flipRate: 0
  verifier: true
log:
  level: error
  format: json
`)

	// Replay naming writes artifacts relative to the current directory.
	require.NoError(t, os.MkdirAll(workDir, 0o755))
	t.Chdir(workDir)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "-f", path})

	require.NoError(t, root.Execute())

	require.FileExists(t, filepath.Join(workDir, "seed1"))
	require.FileExists(t, filepath.Join(workDir, "seed2"))
}

// End-to-end normal-mode run against a boring target: the corpus provider
// cycles forever, so drive it in replay mode with a clean exit instead and
// check that nothing is persisted.
func TestRunBoringTargetPersistsNothing(t *testing.T) {
	dir := t.TempDir()
	seedDir := filepath.Join(dir, "seeds")
	require.NoError(t, os.Mkdir(seedDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "seed1"), []byte("a"), 0o600))

	path := writeManifest(t, dir, `
target:
  command: ["/bin/sh", "-c", "exit 0"]
corpus:
  inputDir: seeds
run:
  workers: 2
  workDir: out
  flipRate: 0
  verifier: true
log:
  level: error
  format: json
`)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "-f", path})

	require.NoError(t, root.Execute())

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	artifact := regexp.MustCompile(`^SIG`)
	for _, e := range entries {
		require.False(t, artifact.MatchString(e.Name()), "unexpected artifact %s", e.Name())
	}
}
