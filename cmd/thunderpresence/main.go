// Package main implements thunderpresence, which polls the War Thunder local
// telemetry API and publishes Discord Rich Presence for the current vehicle.
package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	rootpkg "github.com/thunderpresence/thunderpresence"
	"github.com/thunderpresence/thunderpresence/internal/config"
	"github.com/thunderpresence/thunderpresence/internal/discord"
	"github.com/thunderpresence/thunderpresence/internal/i18n"
	"github.com/thunderpresence/thunderpresence/internal/logger"
	"github.com/thunderpresence/thunderpresence/internal/names"
	"github.com/thunderpresence/thunderpresence/internal/paths"
	"github.com/thunderpresence/thunderpresence/internal/poll"
	"github.com/thunderpresence/thunderpresence/internal/presence"
	"github.com/thunderpresence/thunderpresence/internal/telemetry"
	"github.com/thunderpresence/thunderpresence/internal/update"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//
//	-X main.version=1.4.0
//
// A bare go build falls back to the VCS info embedded by the toolchain.
var version = "dev"

// resolveVersion returns the build version string. An ldflags version is
// returned as-is; otherwise the embedded VCS revision gives "dev+<hash>".
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Flags
// ///////////////////////////////////////////////

// options holds the parsed command line.
type options struct {
	dataDir  string
	logLevel string
	appID    string
	noPause  bool
}

// parseFlags parses args (without the program name). Flags left unset keep
// the config file's value.
func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet(paths.BinaryName, pflag.ContinueOnError)
	fs.StringVar(&o.dataDir, "data-dir", defaultDataDir(), "Data directory for config, vehicle names, and logs")
	fs.StringVar(&o.logLevel, "log-level", "", "Override log.level (trace, debug, info, warn, error)")
	fs.StringVar(&o.appID, "app-id", "", "Override discord.app_id")
	fs.BoolVar(&o.noPause, "no-pause", false, "Exit without waiting for Enter after a fatal error")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

// apply copies the flag overrides into cfg.
func (o options) apply(cfg *config.Config) {
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.appID != "" {
		cfg.Discord.AppID = o.appID
	}
}

// ///////////////////////////////////////////////
// PID Management
// ///////////////////////////////////////////////

// pidToken generates a random 16-character hex token that proves ownership
// of the PID file, so [removePID] only deletes a file this instance wrote.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// writePID opens the PID file, locks it, and writes "PID:TOKEN". The handle
// must stay open for the lifetime of the process to hold the lock.
func writePID(paths DataPaths, token string) (*os.File, error) {
	f, err := os.OpenFile(paths.PID(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock PID file: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	content := fmt.Sprintf("%d:%s", os.Getpid(), token)
	if _, err := f.WriteString(content); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return f, nil
}

// removePID releases the lock and removes the PID file if it still holds
// token.
func removePID(paths DataPaths, token string, f *os.File) {
	if f != nil {
		_ = unlockFile(f)
		f.Close()
	}
	data, err := os.ReadFile(paths.PID())
	if err != nil {
		return
	}
	parts := strings.SplitN(string(data), ":", 2)
	if len(parts) == 2 && parts[1] == token {
		os.Remove(paths.PID())
	}
}

// checkStalePID reports whether another instance holds the PID lock. A PID
// file nobody holds is left over from a dead process and is removed.
func checkStalePID(paths DataPaths) (alive bool, pid int) {
	f, err := os.OpenFile(paths.PID(), os.O_RDWR, 0o600)
	if err != nil {
		return false, 0
	}

	if lockErr := lockFile(f); lockErr != nil {
		data, _ := os.ReadFile(paths.PID())
		f.Close()
		parts := strings.SplitN(string(data), ":", 2)
		if p, convErr := strconv.Atoi(parts[0]); convErr == nil {
			return true, p
		}
		return true, 0
	}

	_ = unlockFile(f)
	f.Close()
	os.Remove(paths.PID())
	return false, 0
}

// ///////////////////////////////////////////////
// Default Data Directory
// ///////////////////////////////////////////////

// defaultDataDir returns ~/.thunderpresence, or ./.thunderpresence when the
// home directory is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// ///////////////////////////////////////////////
// Wiring
// ///////////////////////////////////////////////

// telemetryOptions maps the [telemetry] section onto client options. A
// configured retry delay of zero disables the wait.
func telemetryOptions(cfg *config.Config, cat *i18n.Catalog, ver string) telemetry.Options {
	delay := cfg.Telemetry.RetryDelay()
	if delay == 0 {
		delay = -1
	}
	return telemetry.Options{
		BaseURL:        cfg.Telemetry.BaseURL,
		RequestTimeout: cfg.Telemetry.RequestTimeout(),
		RetryDelay:     delay,
		UserAgent:      paths.BinaryName + "/" + ver,
		Catalog:        cat,
	}
}

// logSeed reports how config.toml was prepared on this run.
func logSeed(cat *i18n.Catalog, path string, seed config.Seed, err error) {
	switch {
	case err != nil:
		slog.Warn("config file could not be created", "path", path, "error", err)
	case seed == config.SeedDefault:
		slog.Info(cat.T("config_created"), "path", path)
	case seed == config.SeedImported:
		slog.Info(cat.T("settings_imported"), "path", path)
	}
}

// waitForEnter blocks until a line is read from in, but only when in is an
// interactive terminal.
func waitForEnter(in *os.File, out io.Writer, cat *i18n.Catalog) {
	if !term.IsTerminal(int(in.Fd())) {
		return
	}
	fmt.Fprintln(out, cat.T("press_enter"))
	_, _ = bufio.NewReader(in).ReadString('\n')
}

// exitCode maps the poll loop's result to a process exit code. Only a
// clean stop or an operator interrupt is a success; hitting the iteration
// ceiling is a forced abort.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is main with an exit code, so deferred cleanup runs before exit.
func run(args []string) int {
	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	dataPaths := DataPaths{Root: opts.dataDir}
	if err := os.MkdirAll(dataPaths.Root, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		return 1
	}

	if alive, pid := checkStalePID(dataPaths); alive {
		fmt.Fprintf(os.Stderr, "thunderpresence already running (pid %d)\n", pid)
		return 1
	}

	seed, seedErr := config.Ensure(dataPaths.Root, rootpkg.DefaultConfigTOML)
	cfg, cfgErr := config.LoadOrDefault(dataPaths.Root)
	opts.apply(cfg)
	cat := i18n.New(cfg.Display.Language)

	log, logCloser, err := logger.NewLogger(dataPaths.Log(), logger.ParseLevel(cfg.Log.Level), cfg.Log.MaxSizeMB, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: init logger: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	ver := resolveVersion()
	slog.Info(cat.T("program_started"), "version", ver, "data_dir", dataPaths.Root)
	logSeed(cat, dataPaths.Config(), seed, seedErr)
	if cfgErr != nil {
		slog.Warn(cat.T("config_fallback"), "error", cfgErr)
	} else {
		slog.Debug(cat.T("config_loaded"), "path", dataPaths.Config())
	}

	token := pidToken()
	pidFile, err := writePID(dataPaths, token)
	if err != nil {
		slog.Error("failed to write PID file", "error", err)
		return 1
	}
	defer removePID(dataPaths, token, pidFile)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if cfg.Update.Check {
		update.Check(ctx, update.Options{
			ManifestURL: cfg.Update.ManifestURL,
			Current:     ver,
			Catalog:     cat,
		})
	}

	table := names.New(dataPaths.Vehicles())
	defer table.Close()

	sink := discord.NewSink(discord.SinkOptions{
		AppID:        cfg.Discord.AppID,
		DefaultImage: cfg.Display.DefaultImage,
		Catalog:      cat,
	})
	if !sink.Connect(ctx) {
		if ctx.Err() != nil {
			slog.Info(cat.T("stopped_by_user"))
			return 0
		}
		if !opts.noPause {
			waitForEnter(os.Stdin, os.Stdout, cat)
		}
		return 1
	}

	slog.Info(cat.T("program_will_try",
		"attempts", strconv.Itoa(telemetry.MaxAttempts),
		"seconds", strconv.Itoa(cfg.Telemetry.RetryDelaySeconds),
	))

	loop := poll.New(poll.Options{
		Telemetry: telemetry.New(telemetryOptions(cfg, cat, ver)),
		Sink:      sink,
		Builder:   presence.NewBuilder(cfg.Display, cat, table),
		Names:     table,
		Interval:  cfg.Telemetry.RefreshInterval(),
		Catalog:   cat,
	})
	err = loop.Run(ctx)

	switch {
	case errors.Is(err, poll.ErrTelemetryExhausted):
		if !opts.noPause {
			waitForEnter(os.Stdin, os.Stdout, cat)
		}
	case errors.Is(err, context.Canceled):
		slog.Info(cat.T("stopped_by_user"))
		poll.CloseWithin(sink, poll.CloseGrace)
	default:
		poll.CloseWithin(sink, poll.CloseGrace)
	}
	return exitCode(err)
}
