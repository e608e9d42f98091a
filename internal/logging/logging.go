// Package logging builds the structured logger shared by the game and its
// collaborators.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Options controls where and how much the logger writes.
type Options struct {
	Level string // debug, info, warn (or warning), error
	File  string // Log file path; empty means Fallback
	// Fallback receives output when File is empty. Nil discards.
	Fallback io.Writer
	Prefix   string
}

// New creates a logger. The returned closer releases the log file, if any.
func New(opts Options) (*log.Logger, io.Closer, error) {
	name := strings.ToLower(opts.Level)
	if name == "warning" {
		name = "warn"
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: invalid level %q: %w", opts.Level, err)
	}

	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	switch {
	case opts.File != "":
		path, err := expandHome(opts.File)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: cannot create directory for %s: %w", path, err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: cannot open %s: %w", path, err)
		}
		out, closer = f, f
	case opts.Fallback != nil:
		out = opts.Fallback
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          opts.Prefix,
		Level:           level,
	})
	return logger, closer, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("logging: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
