// Package logging configures the process-wide zap logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format is the log encoding.
type Format string

const (
	// FormatConsole is the human-readable console encoding.
	FormatConsole Format = "CONSOLE"
	// FormatJSON is the structured JSON encoding.
	FormatJSON Format = "JSON"
)

// Environment variables that override the configured level and format.
const (
	EnvLevel  = "LOGGING_LEVEL"
	EnvFormat = "LOGGING_FORMAT"
)

var initOnce sync.Once

// ParseLevel converts a level name to a zapcore.Level. Unknown names mean WARN,
// so a CLI stays quiet unless asked otherwise.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// ParseFormat converts a format name to a Format, falling back to console.
func ParseFormat(format string) Format {
	if Format(strings.ToUpper(format)) == FormatJSON {
		return FormatJSON
	}
	return FormatConsole
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

// New creates a zap logger writing to w.
func New(w io.Writer, level string, format Format) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == FormatJSON {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))
	return zap.New(core, zap.AddCaller())
}

// Initialize replaces the global logger once. Environment variables win over the
// values passed in, which come from the config file.
func Initialize(level, format string) {
	initOnce.Do(func() {
		if env := os.Getenv(EnvLevel); env != "" {
			level = env
		}
		if env := os.Getenv(EnvFormat); env != "" {
			format = env
		}
		zap.ReplaceGlobals(New(os.Stderr, level, ParseFormat(format)))
	})
}

// For returns a named sugared logger for a component.
func For(component string) *zap.SugaredLogger {
	return zap.S().Named(component)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = zap.L().Sync()
}
