// Package logging builds the slog logger shared by the gitmastery commands.
//
// Records go to a size-rotated log file. Verbose mode mirrors debug records
// to stderr as well.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file kept in the Git-Mastery root
const FileName = ".gitmastery.log"

const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 30
)

// Options configures Setup
type Options struct {
	Path    string    // Log file, empty disables file logging
	Verbose bool      // Log debug records and mirror them to Stderr
	Stderr  io.Writer // Verbose sink
}

// DefaultPath returns the log file location for a Git-Mastery root, or the
// XDG state directory when rootDir is empty
func DefaultPath(rootDir string) (string, error) {
	if rootDir != "" {
		return filepath.Join(rootDir, FileName), nil
	}
	p, err := xdg.StateFile(filepath.Join("gitmastery", "gitmastery.log"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve state directory: %w", err)
	}
	return p, nil
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the logger described by opts. The returned closer flushes the
// log file and must be called before exit.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if opts.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		handlers = append(handlers, slog.NewTextHandler(lj, hopts))
		closer = lj
	}
	if opts.Verbose && opts.Stderr != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Stderr, hopts))
	}

	switch len(handlers) {
	case 0:
		return Discard(), closer, nil
	case 1:
		return slog.New(handlers[0]), closer, nil
	default:
		return slog.New(fanout(handlers)), closer, nil
	}
}

// fanout sends every record to each handler
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
