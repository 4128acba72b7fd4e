package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures the global logging level and format. Dev mode switches
// to debug level with human-readable console output.
func Setup(dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(level).With().Caller().Logger()
	}

	return logger
}
