// Package logging builds the zerolog loggers used by the CLI and the TUI.
//
// The CLI writes human-readable lines to stderr. The TUI owns the terminal,
// so it writes JSON lines to the log file in the config directory instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiowebux/marketcli/internal/config"
)

// Options controls logger construction
type Options struct {
	// Level is the minimum level written (trace, debug, info, warn, error, disabled)
	Level string
	// Output receives log lines
	Output io.Writer
	// Console selects zerolog.ConsoleWriter formatting instead of JSON
	Console bool
	// NoColor disables colours in console mode
	NoColor bool
}

// New creates a logger from opts
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}
	}
	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "none", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// ForCLI logs to stderr in console format
func ForCLI(level string) zerolog.Logger {
	return New(Options{
		Level:   level,
		Output:  os.Stderr,
		Console: true,
		NoColor: os.Getenv("NO_COLOR") != "",
	})
}

// ForTUI appends JSON lines to path. The returned closer releases the file.
func ForTUI(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		path = config.LogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.FilePermissions)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return New(Options{Level: level, Output: f}), f, nil
}
