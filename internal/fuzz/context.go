// Package fuzz defines the state shared by the fuzzing engine and its
// supervision backends: the process-wide engine context, the per-worker run
// state and the collaborator contracts for input generation and coverage
// analysis.
package fuzz

import "sync/atomic"

// Context is the engine-wide state shared by every concurrent fuzzing lane.
// One instance outlives all workers. Apart from the counters, every field is
// written once during setup and read-only afterwards.
type Context struct {
	// WorkDir is the output directory for crash artifacts and scratch inputs.
	WorkDir string

	// FileExtension is the suffix appended to saved artifact names.
	FileExtension string

	// CommandTemplate is the target argument vector. Arguments may contain
	// Placeholder, which the launcher replaces with the candidate input path.
	CommandTemplate []string

	// Placeholder is the file-placeholder token scanned for in the template.
	Placeholder string

	// FuzzFromStdin disables placeholder substitution; input is delivered on
	// the child's standard input instead.
	FuzzFromStdin bool

	// InheritStdout passes the parent's stdout/stderr to the child instead of
	// discarding its output.
	InheritStdout bool

	// FlipRate is the mutation rate the input provider operates with. A rate
	// of exactly zero combined with Verifier selects replay mode.
	FlipRate float64

	// Verifier alters artifact naming so replayed inputs keep their identity.
	Verifier bool

	// Coverage is invoked once per terminal child status, before any crash
	// persistence side effect. May be nil.
	Coverage CoverageAnalyzer

	totalRuns     atomic.Uint64
	totalCrashes  atomic.Uint64
	uniqueCrashes atomic.Uint64
}

// ReplayMode reports whether the context is configured to re-run known inputs
// without renaming their artifacts.
func (c *Context) ReplayMode() bool {
	return c.FlipRate == 0 && c.Verifier
}

// AddRun atomically records one completed fuzzing iteration.
func (c *Context) AddRun() uint64 {
	return c.totalRuns.Add(1)
}

// AddCrash atomically increments the total crash counter.
func (c *Context) AddCrash() uint64 {
	return c.totalCrashes.Add(1)
}

// AddUniqueCrash atomically increments the unique crash counter. Callers must
// keep UniqueCrashes <= TotalCrashes; backends without crash introspection
// count every crash as unique and bump both counters together.
func (c *Context) AddUniqueCrash() uint64 {
	return c.uniqueCrashes.Add(1)
}

// TotalRuns returns the number of completed iterations.
func (c *Context) TotalRuns() uint64 { return c.totalRuns.Load() }

// TotalCrashes returns the total crash count.
func (c *Context) TotalCrashes() uint64 { return c.totalCrashes.Load() }

// UniqueCrashes returns the unique crash count.
func (c *Context) UniqueCrashes() uint64 { return c.uniqueCrashes.Load() }
