// Package logging configures zerolog for the Auto-Launcher process.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root zerolog.Logger = zerolog.New(io.Discard)
)

// Options control global logger construction.
type Options struct {
	// Level is the minimum level to emit (debug, info, warn, error).
	// Default: info.
	Level string

	// Console enables human-readable console output instead of JSON.
	Console bool

	// Output overrides the destination. Default: stderr.
	Output io.Writer
}

// Setup initializes the process-wide logger. Safe to call more than once;
// the last call wins.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level := parseLevel(opts.Level)

	mu.Lock()
	root = zerolog.New(out).Level(level).With().Timestamp().Logger()
	mu.Unlock()
}

// Component returns a logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", name).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
