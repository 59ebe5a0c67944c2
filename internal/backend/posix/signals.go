//go:build !windows

package posix

import "golang.org/x/sys/unix"

// signalClass describes how a terminating signal is treated during crash
// triage.
type signalClass struct {
	// crashWorthy marks signals that indicate a genuine fault worth
	// persisting, as opposed to ordinary termination or job control.
	crashWorthy bool
	name        string
}

var unknownSignal = signalClass{crashWorthy: false, name: "UNKNOWN"}

// signalTable is the immutable signal classification lookup, built once by
// Init before any worker starts.
type signalTable map[unix.Signal]signalClass

// defaultSignalTable lists the signals that indicate memory-safety or
// invariant violations in the target.
func defaultSignalTable() signalTable {
	t := make(signalTable, 5)
	t.register(unix.SIGILL, "SIGILL")
	t.register(unix.SIGFPE, "SIGFPE")
	t.register(unix.SIGSEGV, "SIGSEGV")
	t.register(unix.SIGBUS, "SIGBUS")
	t.register(unix.SIGABRT, "SIGABRT")
	return t
}

// register marks sig as crash-worthy under the given display name. Backends
// layered on top of this one may add entries without touching any caller of
// classify.
func (t signalTable) register(sig unix.Signal, name string) {
	t[sig] = signalClass{crashWorthy: true, name: name}
}

// classify returns the classification for sig. Signals without an explicit
// entry are not crash-worthy and display as "UNKNOWN".
func (t signalTable) classify(sig unix.Signal) signalClass {
	if class, ok := t[sig]; ok {
		return class
	}
	return unknownSignal
}
