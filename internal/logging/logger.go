// Package logging is a small leveled logger shared by the server binaries.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level represents severity.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var level = new(slog.LevelVar)

var baseLogger atomic.Pointer[slog.Logger]

func init() {
	SetOutput(os.Stderr)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetLogLevel parses and sets the global level. Unknown names are ignored.
func SetLogLevel(s string) bool {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return false
	}
	level.Set(l)
	return true
}

// GetLogLevel returns the current global level.
func GetLogLevel() Level { return level.Level() }

// SetOutput redirects all log output. Used by tests.
func SetOutput(w io.Writer) {
	baseLogger.Store(newLogger(w))
}

func logf(l Level, attrs []any, format string, args ...interface{}) {
	logger := baseLogger.Load()
	ctx := context.Background()
	if !logger.Enabled(ctx, l) {
		return
	}
	// Without args the input is printed as-is so literal % in messages survive.
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	logger.Log(ctx, l, msg, attrs...)
}

func Debugf(format string, a ...interface{}) { logf(LevelDebug, nil, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, nil, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, nil, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, nil, format, a...) }

// Component returns a logger that tags every line with component=name and,
// when set, the first eight characters of id.
func Component(name, id string) *ComponentLogger {
	attrs := []any{slog.String("component", name)}
	if id != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		attrs = append(attrs, slog.String("id", id))
	}
	return &ComponentLogger{attrs: attrs}
}

// ComponentLogger tags lines with fixed component attributes.
type ComponentLogger struct {
	attrs []any
}

func (c *ComponentLogger) Debugf(format string, a ...interface{}) {
	logf(LevelDebug, c.attrs, format, a...)
}

func (c *ComponentLogger) Infof(format string, a ...interface{}) {
	logf(LevelInfo, c.attrs, format, a...)
}

func (c *ComponentLogger) Warnf(format string, a ...interface{}) {
	logf(LevelWarn, c.attrs, format, a...)
}

func (c *ComponentLogger) Errorf(format string, a ...interface{}) {
	logf(LevelError, c.attrs, format, a...)
}

// TimeTrack logs at debug level how long a phase took.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}
