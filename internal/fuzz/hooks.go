package fuzz

import (
	"errors"

	"github.com/mkrein/sigfuzz/internal/logging"
)

// ErrExhausted is returned by input providers once every input has been
// visited and no further runs are possible, e.g. at the end of a replay pass.
var ErrExhausted = errors.New("input corpus exhausted")

// InputProvider prepares the candidate input for the next run. Mutation and
// test-case generation live behind this interface; implementations fill the
// run's MutatedPath and OrigFileName.
type InputProvider interface {
	Next(r *Run) error
}

// CoverageAnalyzer samples coverage feedback from a just-terminated run. It is
// invoked exactly once per terminal (exited or signaled) child status, before
// any crash artifact is persisted, and may inspect artifacts the target left
// behind.
type CoverageAnalyzer interface {
	Analyze(c *Context, r *Run)
}

// NopAnalyzer is the default coverage hook for targets without
// instrumentation feedback.
type NopAnalyzer struct{}

// Analyze implements CoverageAnalyzer.
func (NopAnalyzer) Analyze(c *Context, r *Run) {
	logging.Debug().Str("run", r.ID).Int("pid", r.Pid).Msg("no coverage instrumentation configured, skipping analysis")
}
