package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// return new logger with <logtype> json,console and <loglevel> debug,info,warn,error writing to stderr

func NewLogger(logLevel, logType string) *zerolog.Logger {
	return NewLoggerTo(os.Stderr, logLevel, logType)
}

func NewLoggerTo(out io.Writer, logLevel, logType string) *zerolog.Logger {

	// Set log output format
	var writer io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	if strings.ToLower(logType) == "json" {
		writer = out
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	// Set log level, default info
	level := zerolog.InfoLevel
	switch strings.ToLower(logLevel) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return &logger
}
