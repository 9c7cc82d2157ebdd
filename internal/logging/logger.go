package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/netobs/dc-catalog/internal/config"
)

// NewLogger creates the root zerolog.Logger for a binary. Level and output
// format come from the config; service names the emitting binary.
func NewLogger(cfg *config.Config, service string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", service).
		Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
