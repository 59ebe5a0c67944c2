//go:build !windows

package cli

// Built-in supervision backends register themselves on import.
import _ "github.com/mkrein/sigfuzz/internal/backend/posix"
