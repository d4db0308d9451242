// Package logger configures the process-wide zerolog logger. termui's
// stdout is reserved exclusively for graphics and cursor-control escape
// sequences (spec §6), so unlike a typical server every log line is
// routed to a file and stderr/stdout are never touched.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Logger zerolog.Logger

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// DefaultLogPath is where termui always logs, per spec §6.
const DefaultLogPath = "/tmp/termui.log"

func init() {
	// Placeholder until Configure opens the real log file; keeps
	// Logger usable for package-init-time calls in tests.
	Logger = zerolog.New(io.Discard).With().Timestamp().Logger()
}

// Configure opens path (append, creating if needed) and routes all
// logging there at the given level. isDev switches to a
// human-readable console format instead of JSON lines, still written
// to the file rather than a terminal.
func Configure(level LogLevel, path string, isDev bool) error {
	if path == "" {
		path = DefaultLogPath
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	zerolog.SetGlobalLevel(levelFromString(level))

	var writer io.Writer = file
	if isDev {
		writer = zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: "15:04:05",
			NoColor:    true,
			FormatMessage: func(i interface{}) string {
				return fmt.Sprintf("| %s", i)
			},
			FormatLevel: func(i interface{}) string {
				ll, _ := i.(string)
				switch ll {
				case "debug":
					return "DBG"
				case "info":
					return "INF"
				case "warn":
					return "WRN"
				case "error":
					return "ERR"
				case "fatal":
					return "FTL"
				default:
					return strings.ToUpper(ll)
				}
			},
			FormatTimestamp: func(i interface{}) string {
				if ts, ok := i.(string); ok {
					if t, err := time.Parse(time.RFC3339, ts); err == nil {
						return fmt.Sprintf("%s |", t.Format("15:04:05"))
					}
				}
				return fmt.Sprintf("%s |", i)
			},
		}
	}

	Logger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = Logger
	return nil
}

func levelFromString(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// LevelFromEnv honors DEBUG=1/true the same way the teacher's services do.
func LevelFromEnv() LogLevel {
	debug := strings.ToLower(os.Getenv("DEBUG"))
	if debug == "1" || debug == "true" {
		return LevelDebug
	}
	return LevelInfo
}

func Debug(msg string) { Logger.Debug().Msg(msg) }

func Debugf(format string, args ...interface{}) { Logger.Debug().Msgf(format, args...) }

func Info(msg string) { Logger.Info().Msg(msg) }

func Infof(format string, args ...interface{}) { Logger.Info().Msgf(format, args...) }

func Warn(msg string) { Logger.Warn().Msg(msg) }

func Warnf(format string, args ...interface{}) { Logger.Warn().Msgf(format, args...) }

func Error(msg string) { Logger.Error().Msg(msg) }

func Errorf(format string, args ...interface{}) { Logger.Error().Msgf(format, args...) }

// WithField creates a derived logger carrying one structured field,
// e.g. logger.WithField("client", id).Info().Msg("connected").
func WithField(key string, value interface{}) zerolog.Logger {
	return Logger.With().Interface(key, value).Logger()
}
