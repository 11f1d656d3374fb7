// Package logging wraps log/slog in a small global-logger helper with lazy
// initialization, so callers can just call logging.Debug(...) without
// threading a *slog.Logger through every constructor.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu       sync.RWMutex
	logger   *slog.Logger
	initOnce sync.Once
)

// Level mirrors slog's verbosity levels under names that read well at call
// sites configuring the engine.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Config configures the global logger.
type Config struct {
	Level Level
	JSON  bool
}

// Init installs the global logger. Safe to call once at process startup;
// later calls overwrite the previous configuration.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	var level slog.Level
	switch cfg.Level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger = slog.New(handler)
}

// Get returns the global logger, lazily initializing it with INFO/text
// defaults on first use.
func Get() *slog.Logger {
	mu.RLock()
	if logger != nil {
		l := logger
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	initOnce.Do(func() { Init(Config{Level: LevelInfo}) })

	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }
