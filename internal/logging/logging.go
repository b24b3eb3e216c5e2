package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls where and how the engine writes its own log stream,
// separate from anything a backing store adapter logs through its own
// driver.
type Config struct {
	// Level is the minimum level that reaches the log (debug, info, warn, error).
	Level string
	// FilePath is where engine.log lives. Setup always opens it, so an
	// empty path makes Setup fail.
	FilePath string
	// MaxSizeMB rotates the file once it crosses this size (default: 10).
	MaxSizeMB int
	// MaxFiles caps how many rotated generations are kept (default: 5).
	MaxFiles int
	// WriteToStderr additionally mirrors entries to stderr (default: true).
	WriteToStderr bool
}

// DefaultConfig returns the baseline settings: info level, engine.log
// under ~/.fedq/logs/, 10MB rotation, 5 generations kept. The CLI sets up
// engine logging only under --debug, through DebugConfig.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig is DefaultConfig with the level dropped to debug; this is
// what `fedq --debug` switches on.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup opens engine.log under rotation and returns a ready slog.Logger
// plus a cleanup func the caller must run (flushes and closes the file).
func Setup(cfg Config) (*slog.Logger, func(), error) {
	if err := EnsureLogDir(); err != nil {
		return nil, nil, err
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})
	logger := slog.New(handler)

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}

	return logger, cleanup, nil
}

// ParseLevel converts a level name (debug, info, warn, error) to a
// slog.Level, used both by Setup and by the `fedq logs` viewer so the
// two agree on what "debug" means. Defaults to info for anything else.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
