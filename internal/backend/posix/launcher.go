//go:build !windows

package posix

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/mkrein/sigfuzz/internal/fuzz"
	"github.com/mkrein/sigfuzz/internal/logging"
)

// substituteArgs produces the target's argument vector from the command
// template. When fuzzStdin is set the template passes through untouched, the
// input arriving on the child's standard input instead. Otherwise an argument
// equal to token is replaced outright with inputPath, and an argument merely
// containing token keeps the text before the token followed by inputPath.
func substituteArgs(template []string, token, inputPath string, fuzzStdin bool) []string {
	args := make([]string, 0, len(template))
	for _, arg := range template {
		switch {
		case fuzzStdin || token == "":
			args = append(args, arg)
		case arg == token:
			args = append(args, inputPath)
		case strings.Contains(arg, token):
			prefix := arg[:strings.Index(arg, token)]
			args = append(args, prefix+inputPath)
		default:
			args = append(args, arg)
		}
	}
	return args
}

// LaunchChild replaces the current process image with the target program,
// feeding it the candidate input at inputPath. On success control never
// returns; every return is a launch failure the caller can record separately
// from a crash.
func (b *Backend) LaunchChild(c *fuzz.Context, inputPath string) error {
	args := substituteArgs(c.CommandTemplate, c.Placeholder, inputPath, c.FuzzFromStdin)
	if len(args) == 0 {
		return fmt.Errorf("launch child: empty command template")
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("locate target %q: %w", args[0], err)
	}

	logging.Debug().Str("target", path).Str("input", inputPath).Msg("launching target")

	if err := unix.Exec(path, args, os.Environ()); err != nil {
		return fmt.Errorf("exec target %q: %w", path, err)
	}
	// Unreachable: Exec does not return on success.
	return nil
}
