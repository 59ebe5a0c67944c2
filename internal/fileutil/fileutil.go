// Package fileutil provides the small filesystem primitives shared by the
// fuzzing engine: copying candidate inputs into the artifact store and
// formatting the wall-clock timestamps embedded in artifact names.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout is the fixed-width local-time layout used when composing
// crash artifact names.
const TimestampLayout = "2006-01-02.15:04:05"

// Timestamp renders t in the local timezone using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// CopyFile copies the contents of src to dst, replacing dst if it already
// exists. The copy is staged through a temporary file in dst's directory and
// renamed into place so readers never observe a partially written artifact.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %q: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source %q: %w", src, err)
	}

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".copy-*")
	if err != nil {
		return fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %q to %q: %w", tmpName, dst, err)
	}
	return nil
}
