// Package logging builds the slog loggers used across the module.
//
// Loggers are created by name with [GetLogger] after a single [Configure] call. Until
// Configure runs, every logger discards its output, so library users who never
// configure logging see nothing.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

var levelByName = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// Config holds logging parameters.
type Config struct {
	// Output is "stdout", "stderr", "discard" or a file path.
	Output string `env:"OUTPUT" default:"discard"`

	// Level is the minimum level ("debug", "info", "warn", "error").
	Level string `env:"LEVEL" default:"info"`

	// Filter holds per-logger overrides as "name:level,name:level".
	Filter string `env:"FILTER" default:""`

	// JSON switches from console output to slog's JSON handler.
	JSON bool `env:"JSON" default:"false"`

	Writer io.Writer
}

var (
	Group = slog.Group

	current     Config
	currentApp  string
	currentLock sync.Mutex
)

// Configure installs cfg as the global logging configuration.
func Configure(ctx context.Context, cfg Config, appName string) error {
	if err := configure(cfg, appName); err != nil {
		return err
	}

	GetLogger("logging").DebugContext(ctx, "logging configured",
		Group("config",
			"app", appName,
			"output", cfg.Output,
			"level", cfg.Level,
			"filter", cfg.Filter,
			"json", cfg.JSON,
		),
	)
	return nil
}

func configure(cfg Config, appName string) error {
	currentLock.Lock()
	defer currentLock.Unlock()

	if cfg.Writer == nil {
		switch cfg.Output {
		case "", "discard":
			cfg.Writer = io.Discard
		case "stdout":
			cfg.Writer = os.Stdout
		case "stderr":
			cfg.Writer = os.Stderr
		default:
			file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			cfg.Writer = file
		}
	}

	current = cfg
	currentApp = appName
	return nil
}

// GetLogger returns a logger tagged with name.
func GetLogger(name string) Logger {
	currentLock.Lock()
	cfg, app := current, currentApp
	currentLock.Unlock()

	if cfg.Writer == nil || cfg.Writer == io.Discard {
		return NewNopLogger()
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Level, LevelInfo))

	var handler Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(cfg.Writer, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		})
	} else {
		handler = &ConsoleHandler{
			Output:     cfg.Writer,
			Level:      level,
			NameLevels: cfg.nameLevels(),
		}
	}

	logger := slog.New(NewTracingHandler(handler))
	if app != "" {
		logger = logger.With("app", app)
	}
	return logger.With("logger", name)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func (cfg Config) nameLevels() map[string]Level {
	levels := make(map[string]Level)
	for _, pair := range strings.Split(cfg.Filter, ",") {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			continue
		}
		levels[strings.TrimSpace(parts[0])] = parseLevel(parts[1], LevelDebug)
	}
	return levels
}

func parseLevel(s string, fallback Level) Level {
	level, ok := levelByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return fallback
	}
	return level
}
