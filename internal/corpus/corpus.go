// Package corpus supplies candidate inputs to the fuzzing engine. It loads
// seed files from an input directory and stages each into a per-worker
// scratch file so concurrent lanes never share paths.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/mkrein/sigfuzz/internal/fileutil"
	"github.com/mkrein/sigfuzz/internal/fuzz"
	"github.com/mkrein/sigfuzz/internal/logging"
)

// Entry is a single seed file.
type Entry struct {
	Path string
	Name string
	Size int64
}

// Options configures a Provider.
type Options struct {
	// InputDir is scanned non-recursively for seed files.
	InputDir string
	// ScratchDir receives the per-worker candidate files, usually the
	// engine's work directory.
	ScratchDir string
	// Extension is appended to scratch file names.
	Extension string
	// MaxInputSize skips seeds larger than this many bytes; zero disables
	// the cap.
	MaxInputSize int64
	// Replay visits every seed exactly once and then reports exhaustion
	// instead of cycling.
	Replay bool
}

// Provider is a minimal input provider that hands out seeds verbatim.
// Mutation strategies live behind the fuzz.InputProvider interface and can
// replace it without touching the engine.
type Provider struct {
	opts    Options
	entries []Entry
	next    atomic.Uint64
}

// NewProvider scans opts.InputDir and returns a provider over its seeds.
func NewProvider(opts Options) (*Provider, error) {
	entries, err := loadEntries(opts.InputDir, opts.MaxInputSize)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable seeds in %q", opts.InputDir)
	}
	logging.Info().Int("seeds", len(entries)).Str("dir", opts.InputDir).Msg("loaded input corpus")
	return &Provider{opts: opts, entries: entries}, nil
}

// Len returns the number of usable seeds.
func (p *Provider) Len() int { return len(p.entries) }

// Next stages the next seed for the run. In replay mode it returns
// fuzz.ErrExhausted once every seed has been visited.
func (p *Provider) Next(r *fuzz.Run) error {
	idx := p.next.Add(1) - 1
	if p.opts.Replay && idx >= uint64(len(p.entries)) {
		return fuzz.ErrExhausted
	}
	entry := p.entries[idx%uint64(len(p.entries))]

	scratch := filepath.Join(p.opts.ScratchDir, fmt.Sprintf(".sigfuzz.%d.%d.%s", os.Getpid(), r.Worker, p.opts.Extension))
	if err := fileutil.CopyFile(entry.Path, scratch); err != nil {
		return fmt.Errorf("stage seed %q: %w", entry.Name, err)
	}

	r.MutatedPath = scratch
	r.OrigFileName = entry.Name
	return nil
}

func loadEntries(dir string, maxSize int64) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %q: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat seed %q: %w", de.Name(), err)
		}
		if maxSize > 0 && info.Size() > maxSize {
			logging.Warn().Str("seed", de.Name()).Int64("size", info.Size()).Int64("max", maxSize).Msg("seed exceeds maximum input size, skipping")
			continue
		}
		entries = append(entries, Entry{
			Path: filepath.Join(dir, de.Name()),
			Name: de.Name(),
			Size: info.Size(),
		})
	}
	return entries, nil
}
