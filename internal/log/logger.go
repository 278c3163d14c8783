package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Level represents log severity levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config value such as "debug" or "WARN" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("invalid log level: %s", s)
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger interface defines structured logging methods
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	SetLevel(level Level)
	SetJSONOutput(enabled bool)
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer // defaults to os.Stderr
}

// DefaultLogger is the zerolog-backed implementation of Logger
type DefaultLogger struct {
	mu     sync.Mutex
	level  Level
	json   bool
	out    io.Writer
	logger zerolog.Logger
}

// New creates a new logger with the given configuration
func New(cfg LoggerConfig) *DefaultLogger {
	l := &DefaultLogger{
		level: cfg.Level,
		json:  cfg.JSONOutput,
		out:   cfg.Output,
	}
	if l.out == nil {
		l.out = os.Stderr
	}
	l.rebuild()
	return l
}

// Nop returns a logger that discards everything.
func Nop() *DefaultLogger {
	return New(LoggerConfig{Level: ErrorLevel + 1, Output: io.Discard})
}

// rebuild recreates the zerolog logger; callers hold mu or own l exclusively.
func (l *DefaultLogger) rebuild() {
	var w io.Writer = l.out
	if !l.json {
		w = zerolog.ConsoleWriter{
			Out:        l.out,
			NoColor:    os.Getenv("NO_COLOR") != "" || !isTerminal(l.out),
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	zl := zerolog.New(w).With().Timestamp().Logger()
	if l.level > ErrorLevel {
		zl = zl.Level(zerolog.Disabled)
	} else {
		zl = zl.Level(l.level.zerolog())
	}
	l.logger = zl
}

// isTerminal checks if the writer is a character device
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// write emits msg with key-value args as structured fields. A leading odd
// argument is appended to the message.
func (l *DefaultLogger) write(ev *zerolog.Event, msg string, args ...interface{}) {
	if ev == nil {
		return
	}

	if len(args)%2 != 0 {
		msg = fmt.Sprintf("%s %v", msg, args[0])
		args = args[1:]
	}

	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if err, isErr := args[i+1].(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}

func (l *DefaultLogger) current() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logger
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, args ...interface{}) {
	zl := l.current()
	l.write(zl.Debug(), msg, args...)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...interface{}) {
	zl := l.current()
	l.write(zl.Info(), msg, args...)
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, args ...interface{}) {
	zl := l.current()
	l.write(zl.Warn(), msg, args...)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...interface{}) {
	zl := l.current()
	l.write(zl.Error(), msg, args...)
}

// SetLevel sets the minimum log level
func (l *DefaultLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.rebuild()
}

// SetJSONOutput enables or disables JSON output
func (l *DefaultLogger) SetJSONOutput(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.json = enabled
	l.rebuild()
}
