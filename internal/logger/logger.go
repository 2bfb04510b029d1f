// Package logger builds the structured logger of long-running commands.
package logger

import (
	"io"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger writing to w and installs it as the global zerolog logger.
// Console format is human readable; JSON format emits one object per line.
func New(w io.Writer, format schema.LogFormat) zerolog.Logger {
	var logger zerolog.Logger
	if format == schema.JSONLog {
		zerolog.TimeFieldFormat = time.RFC3339
		logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
		logger = zerolog.New(output).With().Timestamp().Logger()
	}
	log.Logger = logger
	return logger
}
