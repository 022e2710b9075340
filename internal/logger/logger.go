// Package logger is the slog setup shared by the poller, the telemetry
// client, and the Discord sink.
//
// Every record goes to two sinks. The rotating log file gets
//
//	2006-01-02T15:04:05.000Z [LEVEL] message | key=value, key2=value2
//
// and the console gets a shorter colored line, see [ConsoleHandler].
// Two levels sit outside the slog set: [LevelTrace] below debug for raw
// telemetry bodies, and [LevelFail] above error for the retry budget
// running out.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ///////////////////////////////////////////////
// Levels
// ///////////////////////////////////////////////

const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelFail  = slog.Level(12)
)

// levels is ordered from least to most severe.
var levels = []struct {
	level slog.Level
	name  string
}{
	{LevelTrace, "TRACE"},
	{LevelDebug, "DEBUG"},
	{LevelInfo, "INFO"},
	{LevelWarn, "WARN"},
	{LevelError, "ERROR"},
	{LevelFail, "FAIL"},
}

// levelName rounds l up to the nearest named level.
func levelName(l slog.Level) string {
	for _, lv := range levels {
		if l <= lv.level {
			return lv.name
		}
	}
	return levels[len(levels)-1].name
}

// ParseLevel maps a config value such as "debug" to its level, ignoring
// case. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	for _, lv := range levels {
		if strings.EqualFold(s, lv.name) {
			return lv.level
		}
	}
	return LevelInfo
}

// ///////////////////////////////////////////////
// Handler
// ///////////////////////////////////////////////

var lineEnding = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// scope is the attribute state shared by both handlers: attributes added
// with WithAttrs and the dotted group prefix from WithGroup.
type scope struct {
	attrs []slog.Attr
	group string
}

func (s scope) withAttrs(attrs []slog.Attr) scope {
	return scope{attrs: append(slices.Clip(s.attrs), attrs...), group: s.group}
}

func (s scope) withGroup(name string) scope {
	if s.group != "" {
		name = s.group + "." + name
	}
	return scope{attrs: s.attrs, group: name}
}

// split returns the record's category, if any, and the remaining attributes.
func (s scope) split(r slog.Record) (category string, attrs []slog.Attr) {
	attrs = make([]slog.Attr, 0, len(s.attrs)+r.NumAttrs())
	collect := func(a slog.Attr) bool {
		if a.Key == CategoryKey {
			category = a.Value.String()
		} else {
			attrs = append(attrs, a)
		}
		return true
	}
	for _, a := range s.attrs {
		collect(a)
	}
	r.Attrs(collect)
	return category, attrs
}

// writeAttrs appends " | k=v, k2=v2" to buf, or nothing for no attrs.
func (s scope) writeAttrs(buf *strings.Builder, attrs []slog.Attr) {
	for i, a := range attrs {
		if i == 0 {
			buf.WriteString(" | ")
		} else {
			buf.WriteString(", ")
		}
		if s.group != "" {
			buf.WriteString(s.group)
			buf.WriteByte('.')
		}
		buf.WriteString(a.Key)
		buf.WriteByte('=')
		buf.WriteString(a.Value.String())
	}
}

// Handler writes the log file format:
//
//	2006-01-02T15:04:05.000Z [LEVEL] message | key=value, ...
//
// A category attribute is written as a tag after the level instead:
//
//	2006-01-02T15:04:05.000Z [INFO] [DISCORD] Successfully connected
type Handler struct {
	w io.Writer
	// mu is shared by handlers derived through WithAttrs and WithGroup.
	mu    *sync.Mutex
	level slog.Level
	scope scope
}

// NewHandler creates a Handler that writes to w, filtering records below level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	category, attrs := h.scope.split(r)

	var buf strings.Builder
	buf.WriteString(r.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	buf.WriteString(" [")
	buf.WriteString(levelName(r.Level))
	buf.WriteString("] ")
	if category != "" {
		buf.WriteString("[" + category + "] ")
	}
	buf.WriteString(r.Message)
	h.scope.writeAttrs(&buf, attrs)
	buf.WriteString(lineEnding)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

// WithAttrs returns a new Handler with the given attributes pre-applied.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{w: h.w, mu: h.mu, level: h.level, scope: h.scope.withAttrs(attrs)}
}

// WithGroup returns a new Handler whose attribute keys are prefixed with
// name, as in "group.key".
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, scope: h.scope.withGroup(name)}
}

// ///////////////////////////////////////////////
// Logger Constructor
// ///////////////////////////////////////////////

// Rotated log files are kept for logMaxAgeDays, at most logBackups of them.
const (
	logBackups    = 3
	logMaxAgeDays = 28
)

// NewLogger creates a slog.Logger that writes to a rotating log file and,
// when console is non-nil, to console through a [ConsoleHandler].
// The returned io.Closer must be closed to flush pending writes.
func NewLogger(logPath string, minLevel slog.Level, maxSizeMB int, console io.Writer) (*slog.Logger, io.Closer, error) {
	if logPath == "" {
		return nil, nil, errors.New("log path must not be empty")
	}
	lj := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSizeMB,
		MaxBackups: logBackups,
		MaxAge:     logMaxAgeDays,
	}

	var handler slog.Handler = NewHandler(lj, minLevel)
	if console != nil {
		handler = Tee(handler, NewConsoleHandler(console, minLevel))
	}
	return slog.New(handler), lj, nil
}

// Trace logs at LevelTrace.
func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// Fail logs at LevelFail.
func Fail(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelFail, msg, args...)
}
