// Package logging builds the slog logger shared by the CLI and the runner.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logDirPermissions = 0o750

// Options configures New
type Options struct {
	Level   slog.Level
	Console io.Writer // defaults to os.Stderr
	File    string    // optional rotating log file, always at debug level
}

// Logger is a slog logger together with the resources it owns
type Logger struct {
	*slog.Logger
	closers []io.Closer
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// New creates a logger writing to the console and, when configured, to a
// rotating file. The console gets text when it is a terminal and JSON otherwise.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var consoleHandler slog.Handler
	if IsTerminal(console) {
		consoleHandler = slog.NewTextHandler(console, handlerOpts)
	} else {
		consoleHandler = slog.NewJSONHandler(console, handlerOpts)
	}

	logger := &Logger{}
	handlers := []slog.Handler{consoleHandler}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), logDirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		rotating := newRotatingFile(opts.File)
		logger.closers = append(logger.closers, rotating)
		handlers = append(handlers, slog.NewTextHandler(rotating, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
				}
				return a
			},
		}))
	}

	logger.Logger = slog.New(&multiHandler{handlers: handlers})
	return logger, nil
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newRotatingFile sizes the log rotation, honoring AUTOGIT_LOG_MAX_SIZE,
// AUTOGIT_LOG_MAX_BACKUPS and AUTOGIT_LOG_MAX_AGE overrides
func newRotatingFile(path string) *lumberjack.Logger {
	l := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 2,
		MaxAge:     30, // days
	}

	if v, err := strconv.Atoi(os.Getenv("AUTOGIT_LOG_MAX_SIZE")); err == nil && v > 0 {
		l.MaxSize = v
	}
	if v, err := strconv.Atoi(os.Getenv("AUTOGIT_LOG_MAX_BACKUPS")); err == nil && v >= 0 {
		l.MaxBackups = v
	}
	if v, err := strconv.Atoi(os.Getenv("AUTOGIT_LOG_MAX_AGE")); err == nil && v > 0 {
		l.MaxAge = v
	}

	return l
}

// multiHandler fans out log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			errs = append(errs, handler.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
