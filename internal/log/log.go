// Package log configures the process-wide structured logger.
// Diagnostics go through zerolog on stderr so they never mix with the
// machine's console output on stdout.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures logger options, normally filled from the YAML config.
type Config struct {
	Level  string    // "debug", "info", "warn", "error"; default "info"
	Format string    // "console" or "json"; default "console"
	Output io.Writer // defaults to os.Stderr
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global logger exactly once; later calls are
// no-ops so library code can call it defensively.
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		if cfg.Level != "" {
			if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		if cfg.Format != "json" {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
		}

		base = zerolog.New(out).With().Timestamp().Logger()
	})
}

// Base returns the configured root logger.
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child logger tagged with a component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
