// Package logging builds the zerolog logger used by every wtl command.
package logging

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/work-time-logger/internal/config"
)

// New returns a logger writing to out. stdout is reserved for command output,
// so callers pass os.Stderr.
func New(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()
}
