//go:build !windows

// Package posix implements the signal-based supervision backend. It spawns
// the target against a candidate input, waits for the child to terminate and
// classifies the outcome by the terminating signal alone: crash-worthy
// signals persist the input as a crash artifact, everything else is boring.
package posix

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mkrein/sigfuzz/internal/backend"
	"github.com/mkrein/sigfuzz/internal/fileutil"
	"github.com/mkrein/sigfuzz/internal/fuzz"
	"github.com/mkrein/sigfuzz/internal/logging"
	"github.com/mkrein/sigfuzz/internal/metrics"
)

func init() {
	backend.Register("posix", func() backend.Backend { return New() })
}

// Backend supervises targets through fork/exec and wait4. It has no
// introspection beyond the signal number, so every accepted crash is counted
// as unique.
type Backend struct {
	sigs signalTable

	// Seams for tests: wall clock and artifact copy primitive.
	now      func() time.Time
	copyFile func(src, dst string) error
}

// New constructs the POSIX supervision backend.
func New() *Backend {
	return &Backend{
		now:      time.Now,
		copyFile: fileutil.CopyFile,
	}
}

// Init populates the signal classification table. It must run before any
// worker spawns a child.
func (b *Backend) Init(c *fuzz.Context) error {
	if len(c.CommandTemplate) == 0 {
		return errors.New("init posix backend: command template is empty")
	}
	b.sigs = defaultSignalTable()
	return nil
}

// Spawn creates the child process for the run's candidate input and records
// its pid. Input is delivered either through placeholder substitution or on
// the child's standard input when the context fuzzes via stdin.
func (b *Backend) Spawn(c *fuzz.Context, r *fuzz.Run) error {
	args := substituteArgs(c.CommandTemplate, c.Placeholder, r.MutatedPath, c.FuzzFromStdin)
	if len(args) == 0 {
		return errors.New("spawn: empty command template")
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("locate target %q: %w", args[0], err)
	}

	stdinPath := os.DevNull
	if c.FuzzFromStdin {
		stdinPath = r.MutatedPath
	}
	stdin, err := os.Open(stdinPath)
	if err != nil {
		return fmt.Errorf("open child stdin %q: %w", stdinPath, err)
	}
	defer stdin.Close()

	stdoutFd := uintptr(os.Stdout.Fd())
	stderrFd := uintptr(os.Stderr.Fd())
	if !c.InheritStdout {
		null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("open %s: %w", os.DevNull, err)
		}
		defer null.Close()
		stdoutFd = null.Fd()
		stderrFd = null.Fd()
	}

	pid, err := syscall.ForkExec(path, args, &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: []uintptr{stdin.Fd(), stdoutFd, stderrFd},
	})
	if err != nil {
		return fmt.Errorf("spawn target %q: %w", path, err)
	}

	r.Pid = pid
	logging.Debug().Str("run", r.ID).Int("pid", pid).Str("target", path).Str("input", r.MutatedPath).Msg("spawned target")
	return nil
}

// Supervise blocks until the run's child reaches a determinate outcome. Each
// observed status is fed to the crash analyzer; transient statuses keep the
// wait loop going. Statuses belonging to other children are never
// misattributed: the wait targets the exact pid recorded at spawn.
func (b *Backend) Supervise(c *fuzz.Context, r *fuzz.Run) {
	for {
		var status unix.WaitStatus
		for {
			pid, err := unix.Wait4(r.Pid, &status, unix.WCONTINUED, nil)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				// The pid is valid between spawn and reap, so this should not
				// happen; give up on the child rather than spin.
				logging.Error().Str("run", r.ID).Int("pid", r.Pid).Err(err).Msg("wait4 failed, abandoning child")
				return
			}
			if pid != r.Pid {
				continue
			}
			break
		}

		logging.Debug().Str("run", r.ID).Int("pid", r.Pid).Int("status", int(status)).Msg("child changed state")

		if b.analyzeStatus(c, r, status) {
			return
		}
	}
}

// analyzeStatus judges a single wait status. It returns true once the child's
// fate is determinate and false for transient statuses that require waiting
// on the same child again. For a crash-worthy termination it persists the
// candidate input and bumps the shared crash counters before returning.
func (b *Backend) analyzeStatus(c *fuzz.Context, r *fuzz.Run, status unix.WaitStatus) bool {
	// Resumed by delivery of SIGCONT.
	if status.Continued() {
		return false
	}

	// Coverage is sampled for every terminal status, crash or not, before any
	// persistence side effect.
	if status.Exited() || status.Signaled() {
		if c.Coverage != nil {
			c.Coverage.Analyze(c, r)
		}
	}

	// Boring, the process just exited.
	if status.Exited() {
		logging.Debug().Str("run", r.ID).Int("pid", r.Pid).Int("code", status.ExitStatus()).Msg("process exited normally")
		return true
	}

	// Shouldn't really happen, but, well..
	if !status.Signaled() {
		logging.Error().Str("run", r.ID).Int("pid", r.Pid).Int("status", int(status)).Msg("process neither exited nor was signaled, please report this as a bug")
		return true
	}

	termsig := status.Signal()
	class := b.sigs.classify(termsig)
	logging.Debug().Str("run", r.ID).Int("pid", r.Pid).Int("signal", int(termsig)).Str("name", class.name).Msg("process killed by signal")
	if !class.crashWorthy {
		logging.Debug().Str("run", r.ID).Int("pid", r.Pid).Msg("signal is not crash-worthy, skipping")
		return true
	}

	dest := b.artifactPath(c, r, class.name)
	logging.Info().Str("run", r.ID).Str("input", r.MutatedPath).Str("artifact", dest).Str("signal", class.name).Msg("saving crash artifact")

	// No introspection beyond the signal number, so every crash counts as
	// unique.
	c.AddCrash()
	c.AddUniqueCrash()
	metrics.IncCrash()
	metrics.IncUniqueCrash()

	if err := b.copyFile(r.MutatedPath, dest); err != nil {
		metrics.IncSaveFailure()
		logging.Error().Str("run", r.ID).Str("input", r.MutatedPath).Str("artifact", dest).Err(err).Msg("could not save crash artifact")
	}
	return true
}

// artifactPath derives the destination name for a crash artifact. In replay
// mode the artifact keeps its original identity; otherwise the name combines
// signal, pid, detection time and seed name so concurrent lanes do not
// collide.
func (b *Backend) artifactPath(c *fuzz.Context, r *fuzz.Run, signalName string) string {
	if c.ReplayMode() {
		return r.OrigFileName
	}
	name := fmt.Sprintf("%s.%d.%s.%s.%s", signalName, r.Pid, fileutil.Timestamp(b.now()), r.OrigFileName, c.FileExtension)
	return filepath.Join(c.WorkDir, name)
}
