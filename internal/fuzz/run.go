package fuzz

// Run is the per-iteration state exclusively owned by a single worker. It is
// created before the child is spawned and recycled once the run has been
// judged; it must never be shared across workers.
type Run struct {
	// Worker is the index of the fuzzing lane driving this run.
	Worker int

	// ID identifies a single spawn/supervise cycle in logs.
	ID string

	// Pid is the spawned child's process id, valid between spawn and reap.
	Pid int

	// MutatedPath is the path of the candidate input fed to the target.
	MutatedPath string

	// OrigFileName is the name of the seed this run derived from, used when
	// composing artifact names.
	OrigFileName string
}
