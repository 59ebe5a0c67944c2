// Package logging provides the structured logger shared by every sigfuzz
// component, built on zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Config holds logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is console or json. Empty selects console when stderr is a
	// terminal and json otherwise.
	Format string `yaml:"format"`
	// File, when set, mirrors all output into the named file.
	File string `yaml:"file"`
}

var (
	mu          sync.RWMutex
	globalLog   zerolog.Logger
	logFile     *os.File
	initialized bool
)

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup initializes the global logger. It may be called again to reconfigure,
// for example from tests.
func Setup(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	format := strings.ToLower(cfg.Format)
	if format == "" {
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "console"
		} else {
			format = "json"
		}
	}

	var writers []io.Writer
	if format == "console" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	} else {
		writers = append(writers, os.Stderr)
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		writers = append(writers, f)
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = io.MultiWriter(writers...)
	}

	globalLog = zerolog.New(out).With().Timestamp().Logger()
	initialized = true
	return nil
}

// Get returns the global logger, falling back to a plain stderr logger when
// Setup has not run yet.
func Get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !initialized {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		return &l
	}
	return &globalLog
}

// Close releases the log file if one was opened.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// Debug returns a debug level event.
func Debug() *zerolog.Event { return Get().Debug() }

// Info returns an info level event.
func Info() *zerolog.Event { return Get().Info() }

// Warn returns a warn level event.
func Warn() *zerolog.Event { return Get().Warn() }

// Error returns an error level event.
func Error() *zerolog.Event { return Get().Error() }
