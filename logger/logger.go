package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

var _ Logger = (*ZeroLogger)(nil)

// New creates a logger writing to stdout. If pretty is true, output is a
// human-readable colored console format; otherwise JSON. An unknown level
// falls back to info.
func New(level string, pretty bool) *ZeroLogger {
	return newLogger(level, pretty, nil)
}

// NewWithFile creates a logger that tees output to stdout and the given
// file. The file receives plain JSON regardless of the pretty setting, so
// logs stay machine-readable on disk. Parent directories are created as
// needed.
func NewWithFile(level string, pretty bool, path string) (*ZeroLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(level, pretty, f), nil
}

func newLogger(level string, pretty bool, file io.Writer) *ZeroLogger {
	var console io.Writer = os.Stdout
	if pretty {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	out := console
	if file != nil {
		out = zerolog.MultiLevelWriter(console, file)
	}

	l := zerolog.New(out).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || zLevel == zerolog.NoLevel {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// WithContext returns a logger carrying the zerolog logger attached to the
// given context, if any.
func (l *ZeroLogger) WithContext(ctx any) Logger {
	if c, ok := ctx.(context.Context); ok {
		zl := zerolog.Ctx(c)
		if zl == nil || zl.GetLevel() == zerolog.Disabled {
			return l
		}
		return &ZeroLogger{zlog: zl}
	}
	return l
}

// WithFields returns a logger with additional fields attached to all entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log}
}

// Level reports the logger's effective level as a string.
func (l *ZeroLogger) Level() string {
	return l.zlog.GetLevel().String()
}
