// Package log is the leveled logger used across the module. The API mirrors
// the classic Debugf/Infof/Errorf style; output is written by zerolog.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level of logging
type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
)

var (
	mu     sync.RWMutex
	level  = INFO
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// SetOutput redirects log output. Mostly used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = newLogger(w)
	mu.Unlock()
}

// SetLogLevel sets the minimum level that will be written.
func SetLogLevel(lvl Level) {
	mu.Lock()
	level = lvl
	mu.Unlock()
}

// ParseLevel maps a level name ("debug", "info", ...) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TRACE, nil
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

func output(lvl Level, msg string) {
	mu.RLock()
	defer mu.RUnlock()
	if lvl < level {
		return
	}

	var ev *zerolog.Event
	switch lvl {
	case TRACE:
		ev = logger.Trace()
	case DEBUG:
		ev = logger.Debug()
	case INFO:
		ev = logger.Info()
	case WARN:
		ev = logger.Warn()
	case ERROR:
		ev = logger.Error()
	default:
		// zerolog's Fatal exits on its own; we do it in Fatal/Fatalf instead
		ev = logger.WithLevel(zerolog.FatalLevel)
	}
	ev.Msg(msg)
}

func Trace(args ...interface{})                 { output(TRACE, fmt.Sprint(args...)) }
func Tracef(format string, args ...interface{}) { output(TRACE, fmt.Sprintf(format, args...)) }
func Debug(args ...interface{})                 { output(DEBUG, fmt.Sprint(args...)) }
func Debugf(format string, args ...interface{}) { output(DEBUG, fmt.Sprintf(format, args...)) }
func Info(args ...interface{})                  { output(INFO, fmt.Sprint(args...)) }
func Infof(format string, args ...interface{})  { output(INFO, fmt.Sprintf(format, args...)) }
func Warn(args ...interface{})                  { output(WARN, fmt.Sprint(args...)) }
func Warnf(format string, args ...interface{})  { output(WARN, fmt.Sprintf(format, args...)) }
func Error(args ...interface{})                 { output(ERROR, fmt.Sprint(args...)) }
func Errorf(format string, args ...interface{}) { output(ERROR, fmt.Sprintf(format, args...)) }

func Fatal(args ...interface{}) {
	output(FATAL, fmt.Sprint(args...))
	os.Exit(1)
}

func Fatalf(format string, args ...interface{}) {
	output(FATAL, fmt.Sprintf(format, args...))
	os.Exit(1)
}
