// Package logging configures the process-wide slog logger.
//
// Two output formats are supported: "console" writes colour-coded,
// human-readable lines with the calling function and line, and "json"
// writes one JSON object per line.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	// ErrBadLevel is returned by ParseLevel for unknown level names.
	ErrBadLevel = errors.New("bad log level")

	// ErrBadFormat is reported when the output format is unknown.
	ErrBadFormat = errors.New("bad log format")
)

// Options configures the logger built by New.
type Options struct {
	// Level is one of debug, info, warning (or warn) and error.
	Level string

	// Format is FormatConsole or FormatJSON.
	Format string

	// Output defaults to os.Stdout.
	Output io.Writer
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrBadLevel, name)
	}
}

// New builds a logger from opts. An unknown level or format never fails:
// the logger falls back to info level or console output and reports the
// malformed value through itself.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level, levelErr := ParseLevel(opts.Level)

	var (
		handler   slog.Handler
		formatErr error
	)
	switch strings.ToLower(opts.Format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case FormatConsole, "":
		handler = newConsoleHandler(out, level)
	default:
		formatErr = fmt.Errorf("%w: %q", ErrBadFormat, opts.Format)
		handler = newConsoleHandler(out, level)
	}

	logger := slog.New(handler)
	if levelErr != nil {
		logger.Warn("bad log level, falling back to info", "level", opts.Level)
	}
	if formatErr != nil {
		logger.Warn("bad log format, falling back to console", "format", opts.Format)
	}

	return logger
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}

func newConsoleHandler(out io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(out, &tint.Options{
		Level:      level,
		AddSource:  true,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(out),
	})
}

// isTerminal reports whether out is a terminal that understands ANSI colours.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
