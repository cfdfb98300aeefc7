package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

// Config controls the process-wide logger.
type Config struct {
	Level  string
	Pretty bool
	Output io.Writer
}

// Configure replaces the default logger. Unknown levels fall back to info.
func Configure(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = cfg.Output
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}
	defaultLogger = zerolog.New(w).With().Timestamp().Logger()
	log.Logger = defaultLogger
}

func Debug() *zerolog.Event { return defaultLogger.Debug() }
func Info() *zerolog.Event  { return defaultLogger.Info() }
func Warn() *zerolog.Event  { return defaultLogger.Warn() }
func Error() *zerolog.Event { return defaultLogger.Error() }
func Fatal() *zerolog.Event { return defaultLogger.Fatal() }

// With returns a child logger carrying one extra field.
func With(key string, value interface{}) zerolog.Logger {
	return defaultLogger.With().Interface(key, value).Logger()
}

func init() {
	Configure(Config{Level: "info", Pretty: true})
}
