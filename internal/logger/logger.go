// Package logger configures the structured logger used across studyblocks.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ayoisaiah/studyblocks/internal/config"
)

// Options controls where log records are written.
type Options struct {
	// Path of the rotating log file. Logging to a file is skipped when empty.
	Path string
	// Tee additionally writes every record to this writer (the serve command
	// uses stderr).
	Tee io.Writer
}

// Level converts a config level name into a slog.Level.
func Level(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a JSON logger that writes to a lumberjack rotated file and sets
// it as the process default. The returned closer releases the log file.
func New(cfg config.LogConfig, opts Options) (*slog.Logger, io.Closer, error) {
	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, err
		}

		lj := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}

		writers = append(writers, lj)
		closer = lj
	}

	if opts.Tee != nil {
		writers = append(writers, opts.Tee)
	}

	var w io.Writer = io.Discard
	if len(writers) > 0 {
		w = io.MultiWriter(writers...)
	}

	l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: Level(cfg.Level),
	}))

	slog.SetDefault(l)

	return l, closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
