// Package logger tests verify the file [Handler] format, the colored
// [ConsoleHandler], level filtering, and fan-out through [Tee].
package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
)

// line returns the single line written to buf without its line ending.
func line(buf *bytes.Buffer) string {
	return strings.TrimRight(buf.String(), "\r\n")
}

// ///////////////////////////////////////////////
// File Handler Format
// ///////////////////////////////////////////////

func TestHandler_Format(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		wants []string
		avoid string
	}{
		{
			name:  "with_attr",
			log:   func(l *slog.Logger) { l.Info("telemetry request", "url", "http://127.0.0.1:8111/indicators") },
			wants: []string{"[INFO] telemetry request", "| url=http://127.0.0.1:8111/indicators"},
		},
		{
			name:  "no_attrs",
			log:   func(l *slog.Logger) { l.Warn("Discord not found") },
			wants: []string{"[WARN] Discord not found"},
			avoid: "|",
		},
		{
			name:  "multiple_attrs",
			log:   func(l *slog.Logger) { l.Error("connection error", "attempt", 3, "max", 16) },
			wants: []string{"attempt=3, max=16"},
		},
		{
			name:  "category_tag",
			log:   func(l *slog.Logger) { l.Info("Successfully connected", CategoryKey, CategoryDiscord, "image", "main_logo") },
			wants: []string{"[INFO] [DISCORD] Successfully connected | image=main_logo"},
			avoid: "category=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewHandler(&buf, LevelInfo)))

			got := line(&buf)
			for _, want := range tt.wants {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
			if tt.avoid != "" && strings.Contains(got, tt.avoid) {
				t.Errorf("output %q should not contain %q", got, tt.avoid)
			}
			if ts := strings.Split(got, " [")[0]; !strings.HasSuffix(ts, "Z") {
				t.Errorf("timestamp %q is not UTC", ts)
			}
		})
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, LevelWarn))

	logger.Info("In hangar")
	logger.Warn("unexpected status")

	output := buf.String()
	if strings.Contains(output, "In hangar") {
		t.Error("info record passed a warn handler")
	}
	if !strings.Contains(output, "unexpected status") {
		t.Error("warn record was dropped")
	}
}

func TestHandler_CustomLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, LevelTrace))

	Trace(logger, "telemetry response")
	Fail(logger, "telemetry exhausted")

	output := buf.String()
	for _, want := range []string{"[TRACE] telemetry response", "[FAIL] telemetry exhausted"} {
		if !strings.Contains(output, want) {
			t.Errorf("output %q missing %q", output, want)
		}
	}
}

func TestLevelNames(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{LevelTrace, "TRACE"},
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFail, "FAIL"},
	}
	for _, tt := range tests {
		if got := levelName(tt.level); got != tt.want {
			t.Errorf("levelName(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"fail", LevelFail},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelInfo)
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "poll")}).WithGroup("tick").WithGroup("map"))

	logger.Info("map info", "valid", true)

	got := line(&buf)
	if !strings.Contains(got, "component=poll") {
		t.Errorf("output %q missing pre-applied attr", got)
	}
	if !strings.Contains(got, "tick.map.valid=true") {
		t.Errorf("output %q missing nested group prefix", got)
	}
	if h.WithGroup("") != slog.Handler(h) {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestHandler_WithAttrsSharedMutex(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelInfo)
	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*Handler)

	if h.mu != h2.mu {
		t.Error("WithAttrs should share the same mutex pointer")
	}

	logger1 := slog.New(h)
	logger2 := slog.New(h2)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			logger1.Info("from handler 1")
		}()
		go func() {
			defer wg.Done()
			logger2.Info("from handler 2")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\n")
	if len(lines) != 100 {
		t.Fatalf("lines = %d, want 100", len(lines))
	}
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if !strings.HasSuffix(l, "from handler 1") && !strings.HasSuffix(l, "from handler 2 | k=v") {
			t.Errorf("interleaved line: %q", l)
		}
	}
}

// ///////////////////////////////////////////////
// Console Handler
// ///////////////////////////////////////////////

func TestConsoleHandler_Format(t *testing.T) {
	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{
			name: "info",
			log:  func(l *slog.Logger) { l.Info("In hangar") },
			want: "INFO - In hangar",
		},
		{
			name: "attrs",
			log:  func(l *slog.Logger) { l.Error("Connection error", "url", "http://127.0.0.1:8111/state") },
			want: "ERROR - Connection error | url=http://127.0.0.1:8111/state",
		},
		{
			name: "category_replaces_level",
			log:  func(l *slog.Logger) { l.Info("Connecting, attempt #1", CategoryKey, CategoryDiscord) },
			want: "DISCORD - Connecting, attempt #1",
		},
		{
			name: "success",
			log:  func(l *slog.Logger) { l.Info("Successfully connected", CategoryKey, CategorySuccess, "image", "main_logo") },
			want: "SUCCESS - Successfully connected | image=main_logo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewConsoleHandler(&buf, LevelInfo, termenv.WithProfile(termenv.Ascii))))
			if got := line(&buf); got != tt.want {
				t.Errorf("console line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsoleHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, LevelDebug, termenv.WithProfile(termenv.ANSI)))

	logger.Error("Failed to update status")
	logger.Info("Status updated", CategoryKey, CategorySuccess)
	logger.Debug("presence unchanged")

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), buf.String())
	}
	for i, l := range lines {
		if !strings.HasPrefix(l, "\x1b[") {
			t.Errorf("line %d not colored: %q", i, l)
		}
	}
	if lines[0] == lines[1] {
		t.Error("error and success lines should differ")
	}
	if !strings.Contains(lines[2], ";2m") && !strings.Contains(lines[2], "[2;") {
		t.Errorf("debug line not faint: %q", lines[2])
	}
}

func TestConsoleHandler_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, LevelInfo, termenv.WithProfile(termenv.Ascii)))

	logger.Debug("telemetry request")
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %q", buf.String())
	}
}

// ///////////////////////////////////////////////
// Tee
// ///////////////////////////////////////////////

// failingHandler reports an error from every Handle call.
type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTee_JoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	tee := Tee(failingHandler{NewHandler(&bytes.Buffer{}, LevelInfo)}, NewHandler(&buf, LevelInfo))

	err := tee.Handle(context.Background(), slog.NewRecord(time.Now(), LevelInfo, "Status updated", 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Handle() error = %v, want the failing sink's error", err)
	}
	if !strings.Contains(buf.String(), "Status updated") {
		t.Error("a failing sink should not block the others")
	}
}

func TestTee(t *testing.T) {
	var file, console bytes.Buffer
	logger := slog.New(Tee(
		NewHandler(&file, LevelTrace),
		NewConsoleHandler(&console, LevelInfo, termenv.WithProfile(termenv.Ascii)),
	)).With("run", 1)

	Trace(logger, "telemetry response")
	logger.Info("Status updated")

	if !strings.Contains(file.String(), "telemetry response | run=1") {
		t.Errorf("file sink missing trace record: %q", file.String())
	}
	if strings.Contains(console.String(), "telemetry response") {
		t.Errorf("console sink got trace record: %q", console.String())
	}
	if !strings.Contains(console.String(), "INFO - Status updated | run=1") {
		t.Errorf("console sink missing info record: %q", console.String())
	}
}

// ///////////////////////////////////////////////
// NewLogger Constructor
// ///////////////////////////////////////////////

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thunderpresence.log")
	var console bytes.Buffer

	logger, closer, err := NewLogger(path, LevelInfo, 10, &console)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	logger.Info("Program started")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] Program started") {
		t.Errorf("log file = %q", data)
	}
	if !strings.Contains(console.String(), "Program started") {
		t.Errorf("console = %q", console.String())
	}
}

func TestNewLogger_EmptyPath(t *testing.T) {
	if _, _, err := NewLogger("", LevelInfo, 10, nil); err == nil {
		t.Fatal("NewLogger(\"\") succeeded")
	}
}
