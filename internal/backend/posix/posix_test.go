//go:build linux

package posix

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkrein/sigfuzz/internal/backend"
	"github.com/mkrein/sigfuzz/internal/fuzz"
)

func writeSeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSpawnAndSuperviseNormalExit(t *testing.T) {
	b := New()
	hook := &countingAnalyzer{}
	c := &fuzz.Context{
		WorkDir:         t.TempDir(),
		FileExtension:   "fuzz",
		CommandTemplate: []string{"/bin/sh", "-c", "exit 0"},
		FlipRate:        0.05,
		Coverage:        hook,
	}
	require.NoError(t, b.Init(c))

	input := writeSeed(t, t.TempDir(), "seed1", "data")
	r := &fuzz.Run{MutatedPath: input, OrigFileName: "seed1"}

	require.NoError(t, b.Spawn(c, r))
	require.Greater(t, r.Pid, 0)

	b.Supervise(c, r)

	require.Equal(t, 1, hook.calls)
	require.Zero(t, c.TotalCrashes())
	entries, err := os.ReadDir(c.WorkDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSpawnAndSuperviseSegfault(t *testing.T) {
	b := New()
	c := &fuzz.Context{
		WorkDir:         t.TempDir(),
		FileExtension:   "fuzz",
		CommandTemplate: []string{"/bin/sh", "-c", "kill -SEGV $$"},
		FlipRate:        0.05,
	}
	require.NoError(t, b.Init(c))

	input := writeSeed(t, t.TempDir(), "seed1", "crashing input")
	r := &fuzz.Run{MutatedPath: input, OrigFileName: "seed1"}

	require.NoError(t, b.Spawn(c, r))
	b.Supervise(c, r)

	require.EqualValues(t, 1, c.TotalCrashes())
	require.EqualValues(t, 1, c.UniqueCrashes())

	entries, err := os.ReadDir(c.WorkDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	pattern := regexp.MustCompile(`^SIGSEGV\.` + strconv.Itoa(r.Pid) + `\.\d{4}-\d{2}-\d{2}\.\d{2}:\d{2}:\d{2}\.seed1\.fuzz$`)
	require.Regexp(t, pattern, entries[0].Name())

	data, err := os.ReadFile(filepath.Join(c.WorkDir, entries[0].Name()))
	require.NoError(t, err)
	require.Equal(t, "crashing input", string(data))
}

func TestSuperviseFiltersContinuedStatus(t *testing.T) {
	b := New()
	c := &fuzz.Context{
		WorkDir:         t.TempDir(),
		FileExtension:   "fuzz",
		CommandTemplate: []string{"/bin/sh", "-c", "sleep 5"},
		FlipRate:        0.05,
	}
	require.NoError(t, b.Init(c))

	input := writeSeed(t, t.TempDir(), "seed1", "data")
	r := &fuzz.Run{MutatedPath: input, OrigFileName: "seed1"}
	require.NoError(t, b.Spawn(c, r))

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Supervise(c, r)
	}()

	// Stop, resume and finally kill the child. The continued notification
	// must not terminate supervision; the benign SIGKILL termination must.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(r.Pid, syscall.SIGSTOP))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(r.Pid, syscall.SIGCONT))
	time.Sleep(50 * time.Millisecond)

	select {
	case <-done:
		t.Fatal("supervision ended on a transient status")
	default:
	}

	require.NoError(t, syscall.Kill(r.Pid, syscall.SIGKILL))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervision did not end after the child was killed")
	}

	require.Zero(t, c.TotalCrashes(), "SIGKILL is not crash-worthy")
	entries, err := os.ReadDir(c.WorkDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSpawnStdinDelivery(t *testing.T) {
	b := New()
	marker := filepath.Join(t.TempDir(), "copied")
	c := &fuzz.Context{
		WorkDir:         t.TempDir(),
		FileExtension:   "fuzz",
		CommandTemplate: []string{"/bin/sh", "-c", "cat > " + marker},
		FuzzFromStdin:   true,
		FlipRate:        0.05,
	}
	require.NoError(t, b.Init(c))

	input := writeSeed(t, t.TempDir(), "seed1", "stdin payload")
	r := &fuzz.Run{MutatedPath: input, OrigFileName: "seed1"}

	require.NoError(t, b.Spawn(c, r))
	b.Supervise(c, r)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	require.Equal(t, "stdin payload", string(data))
}

func TestSpawnMissingTargetIsLaunchError(t *testing.T) {
	b := New()
	c := &fuzz.Context{
		CommandTemplate: []string{"/nonexistent/sigfuzz-target"},
		FlipRate:        0.05,
	}
	require.NoError(t, b.Init(c))

	r := &fuzz.Run{MutatedPath: "/tmp/in", OrigFileName: "seed1"}
	require.Error(t, b.Spawn(c, r))
	require.Zero(t, r.Pid)
}

func TestBackendIsRegistered(t *testing.T) {
	reg := backend.NewRegistry()
	_, ok := reg["posix"]
	require.True(t, ok, "posix backend must self-register")
}
