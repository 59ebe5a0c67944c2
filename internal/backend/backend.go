// Package backend defines the process-supervision interface implemented by
// every fuzzing backend, together with a registry of the built-in adapters.
package backend

import "github.com/mkrein/sigfuzz/internal/fuzz"

// Backend drives a single target run from spawn to a determinate outcome.
// The engine depends only on this interface; concrete adapters decide how
// children are created and how their terminations are classified.
type Backend interface {
	// Init performs one-time setup before any worker starts, for example
	// populating the backend's signal classification table.
	Init(c *fuzz.Context) error

	// Spawn creates the child process for the run's candidate input and
	// records its pid in the run state. It carries no policy beyond process
	// creation; failures are launch errors, distinct from crashes.
	Spawn(c *fuzz.Context, r *fuzz.Run) error

	// LaunchChild replaces the current process image with the target,
	// substituting the candidate input path into the command template. It
	// never returns on success; a returned error is a launch failure the
	// caller may record.
	LaunchChild(c *fuzz.Context, inputPath string) error

	// Supervise blocks until the run's child reaches a determinate outcome,
	// performing crash triage and persistence along the way. It never fails
	// the surrounding engine on a single child's misbehavior.
	Supervise(c *fuzz.Context, r *fuzz.Run)
}

// Registry maps backend identifiers to their concrete implementations.
type Registry map[string]Backend

// Clone returns a shallow copy of the registry, allowing callers to avoid
// accidental mutation of shared maps.
func (r Registry) Clone() Registry {
	dup := make(Registry, len(r))
	for k, v := range r {
		dup[k] = v
	}
	return dup
}
