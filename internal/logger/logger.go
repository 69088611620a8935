package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type (
	LogLevel string // LogLevel represents logging level
	Fields   map[string]any
)

// available log levels
const (
	DebugLogLevel LogLevel = "debug"
	InfoLogLevel  LogLevel = "info"
	WarnLogLevel  LogLevel = "warn"
	ErrorLogLevel LogLevel = "error"
)

// rolling file defaults
const (
	DefaultFileName   = "app.log"
	DefaultMaxBytes   = 10 * 1024
	DefaultMaxBackups = 10
)

// StartupMessage is the first entry written to a fresh file sink.
const StartupMessage = "Application startup"

// callers of logEvent sit two frames above zerolog's default caller frame
const callerSkipFrames = 4

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level       LogLevel
	Development bool

	// rolling log config
	LogDir     string
	FileName   string
	MaxBytes   int64
	MaxBackups int
}

// Logger interface defines all logging methods
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	Cleanup()
}

type logger struct {
	zl     zerolog.Logger
	fields Fields
	mu     sync.RWMutex
	sink   io.Closer
}

// New creates the process logger. In development mode it writes readable
// lines to stdout and touches no files. Otherwise it creates the log
// directory, attaches a size-capped rolling file and records the startup
// marker.
func New(config *LoggerConfig) (Logger, error) {
	if config == nil {
		config = &LoggerConfig{
			Level:       DebugLogLevel,
			Development: true,
		}
	}

	if config.Development {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
		return newLogger(output, config.Level, nil), nil
	}

	dir := config.LogDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating log directory %s: %w", dir, err)
	}

	name := config.FileName
	if name == "" {
		name = DefaultFileName
	}
	maxBytes := config.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	backups := config.MaxBackups
	if backups <= 0 {
		backups = DefaultMaxBackups
	}

	sink, err := newRollingFile(filepath.Join(dir, name), maxBytes, backups)
	if err != nil {
		return nil, err
	}

	l := newLogger(TextFormatter(sink), fileLevel(config.Level), sink)
	l.Info(StartupMessage)
	return l, nil
}

// NewWithWriter builds a logger emitting one JSON object per entry to w.
// Tests use it with an in-memory buffer.
func NewWithWriter(w io.Writer, level LogLevel) Logger {
	return newLogger(w, level, nil)
}

func newLogger(output io.Writer, level LogLevel, sink io.Closer) *logger {
	zl := zerolog.New(output).
		Level(getZerologLevel(level)).
		With().
		Timestamp().
		CallerWithSkipFrameCount(callerSkipFrames).
		Logger()

	return &logger{
		zl:     zl,
		fields: make(Fields),
		sink:   sink,
	}
}

// TextFormatter renders entries as
// "<timestamp> <LEVEL>: <message> [in <file>:<line>]" followed by any
// structured fields.
func TextFormatter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
			zerolog.CallerFieldName,
		},
		FormatLevel: func(i any) string {
			level, _ := i.(string)
			if level == zerolog.LevelWarnValue {
				return "WARNING:"
			}
			return strings.ToUpper(level) + ":"
		},
		FormatCaller: func(i any) string {
			caller, _ := i.(string)
			if caller == "" {
				return ""
			}
			return "[in " + caller + "]"
		},
	}
}

// WithFields creates a new Logger instance with the provided fields added to the
// logger's fields. This allows additional context to be included in log entries.
func (l *logger) WithFields(fields Fields) Logger {
	newFields := l.copyFields(len(fields))
	for k, v := range fields {
		newFields[k] = v
	}

	return &logger{
		zl:     l.zl,
		fields: newFields,
		sink:   l.sink,
	}
}

// WithError creates a new Logger instance with the provided error added to the
// logger's fields. This allows the error to be included in log entries.
func (l *logger) WithError(err error) Logger {
	newFields := l.copyFields(1)
	if err != nil {
		newFields["error"] = err.Error()
	}

	return &logger{
		zl:     l.zl,
		fields: newFields,
		sink:   l.sink,
	}
}

func (l *logger) copyFields(extra int) Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(Fields, len(l.fields)+extra)
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}

// logEvent is a helper method that logs an event with the logger's fields.
// It checks the provided fields for key-value pairs, and adds them to the event.
// It then adds the logger's fields to the event, and logs the message.
func (l *logger) logEvent(event *zerolog.Event, msg string, fields ...any) {
	// disabled levels hand back a nil event
	if event == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	// check if we have pairs of fields (key-value)
	if len(fields) > 0 {
		if len(fields)%2 != 0 { // odd number of fields means unpaired key-value
			event.Interface("UNPAIRED_FIELDS", fields)
		} else {
			// process key-value pairs
			for i := 0; i < len(fields); i += 2 {
				key, ok := fields[i].(string) // first item should be string key
				if !ok {
					// key isn't a string
					event.Interface("INVALID_KEY", fields[i])
					continue
				}
				event.Interface(key, fields[i+1]) // add key-value pair to log
			}
		}
	}

	for k, v := range l.fields {
		event.Interface(k, v)
	}

	event.Msg(msg)
}

// Cleanup closes the rolling file if this logger owns one.
func (l *logger) Cleanup() {
	if l.sink == nil {
		return
	}
	if err := l.sink.Close(); err != nil {
		// log error using global stderr as logger might be unusable
		fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
	}
}

// fileLevel keeps the file sink at info or below so the startup marker and
// request lines are always recorded.
func fileLevel(level LogLevel) LogLevel {
	if getZerologLevel(level) > zerolog.InfoLevel {
		return InfoLogLevel
	}
	return level
}

// getZerologLevel converts a LogLevel to the corresponding zerolog.Level.
// If the provided LogLevel is not recognized, it defaults to zerolog.InfoLevel.
func getZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case DebugLogLevel:
		return zerolog.DebugLevel
	case InfoLogLevel:
		return zerolog.InfoLevel
	case WarnLogLevel:
		return zerolog.WarnLevel
	case ErrorLogLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *logger) Debug(msg string, fields ...any) {
	l.logEvent(l.zl.Debug(), msg, fields...)
}

func (l *logger) Info(msg string, fields ...any) {
	l.logEvent(l.zl.Info(), msg, fields...)
}

func (l *logger) Warn(msg string, fields ...any) {
	l.logEvent(l.zl.Warn(), msg, fields...)
}

func (l *logger) Error(msg string, fields ...any) {
	l.logEvent(l.zl.Error(), msg, fields...)
}
