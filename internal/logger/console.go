package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// CategoryKey is the attribute that selects a console color independent of
// the level. The console prints its value in place of the level name.
const CategoryKey = "category"

// Categories understood by the console.
const (
	CategoryDiscord = "DISCORD"
	CategorySuccess = "SUCCESS"
)

// ///////////////////////////////////////////////
// Console Handler
// ///////////////////////////////////////////////

// ConsoleHandler writes short colored lines for the operator:
//
//	LEVEL - message | key=value, ...
//
// Colors follow the level, or the category attribute when one is set.
// Color is dropped automatically when the writer is not a terminal.
type ConsoleHandler struct {
	out   *termenv.Output
	mu    *sync.Mutex
	level slog.Level
	scope scope
}

// NewConsoleHandler creates a ConsoleHandler writing to w. Options are
// passed to termenv, for example to force a color profile.
func NewConsoleHandler(w io.Writer, level slog.Level, opts ...termenv.OutputOption) *ConsoleHandler {
	return &ConsoleHandler{out: termenv.NewOutput(w, opts...), mu: &sync.Mutex{}, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a log record.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	category, attrs := h.scope.split(r)

	label, color := levelName(r.Level), h.levelColor(r.Level)
	if category != "" {
		label = category
		if c := h.categoryColor(category); c != nil {
			color = c
		}
	}

	var buf strings.Builder
	buf.WriteString(label)
	buf.WriteString(" - ")
	buf.WriteString(r.Message)
	h.scope.writeAttrs(&buf, attrs)

	line := h.out.String(buf.String()).Foreground(color)
	if r.Level <= LevelDebug {
		line = line.Faint()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String()+lineEnding)
	return err
}

func (h *ConsoleHandler) levelColor(l slog.Level) termenv.Color {
	switch {
	case l >= LevelError:
		return h.out.Color("9")
	case l >= LevelWarn:
		return h.out.Color("11")
	case l >= LevelInfo:
		return h.out.Color("15")
	default:
		return h.out.Color("8")
	}
}

func (h *ConsoleHandler) categoryColor(category string) termenv.Color {
	switch category {
	case CategoryDiscord:
		return h.out.Color("12")
	case CategorySuccess:
		return h.out.Color("10")
	default:
		return nil
	}
}

// WithAttrs returns a new ConsoleHandler with the given attributes pre-applied.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ConsoleHandler{out: h.out, mu: h.mu, level: h.level, scope: h.scope.withAttrs(attrs)}
}

// WithGroup returns a new ConsoleHandler with the given group name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ConsoleHandler{out: h.out, mu: h.mu, level: h.level, scope: h.scope.withGroup(name)}
}

// ///////////////////////////////////////////////
// Tee
// ///////////////////////////////////////////////

type teeHandler []slog.Handler

// Tee returns a handler that passes every record to each of handlers that
// has its level enabled.
func Tee(handlers ...slog.Handler) slog.Handler {
	return teeHandler(handlers)
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
