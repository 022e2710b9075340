// Package poll runs the tick loop: read telemetry, pick the presence card
// for what the player is doing, and publish it.
package poll

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/thunderpresence/thunderpresence/internal/clock"
	"github.com/thunderpresence/thunderpresence/internal/i18n"
	"github.com/thunderpresence/thunderpresence/internal/logger"
	"github.com/thunderpresence/thunderpresence/internal/presence"
	"github.com/thunderpresence/thunderpresence/internal/telemetry"
	"github.com/thunderpresence/thunderpresence/internal/vehicle"
)

// MaxIterations is the tick ceiling after which Run gives up.
const MaxIterations = 10000

// ShutdownGrace is waited after closing the sink on permanent failure.
const ShutdownGrace = 800 * time.Millisecond

// CloseGrace bounds how long closing the sink may block shutdown.
const CloseGrace = time.Second

var (
	// ErrTelemetryExhausted means the game API stayed unreachable for the
	// whole connection budget.
	ErrTelemetryExhausted = errors.New("telemetry connection budget exhausted")
	// ErrIterationLimit means Run reached MaxIterations.
	ErrIterationLimit = errors.New("iteration limit reached")
)

// ///////////////////////////////////////////////
// Dependencies
// ///////////////////////////////////////////////

// Telemetry is the game API. *telemetry.Client implements it.
type Telemetry interface {
	Failed() bool
	MapInfo(ctx context.Context) telemetry.MapState
	Indicators(ctx context.Context) ([]byte, bool)
	State(ctx context.Context) (string, bool)
}

// Sink publishes frames. *discord.Sink implements it.
type Sink interface {
	Update(ctx context.Context, f presence.Frame) error
	Close() error
}

// Refresher reloads auxiliary data between ticks. *names.Table implements
// it.
type Refresher interface {
	Refresh() bool
}

// Options configures a Loop.
type Options struct {
	Telemetry Telemetry
	Sink      Sink
	Builder   *presence.Builder
	// Names is refreshed at the start of every tick. Optional.
	Names Refresher
	// Interval is the tick cadence.
	Interval time.Duration
	// MaxIterations overrides the tick ceiling. Zero means MaxIterations.
	MaxIterations int
	Clock         clock.Clock
	Catalog       *i18n.Catalog
}

// Loop is the poll loop. It is not safe for concurrent use.
type Loop struct {
	tel      Telemetry
	sink     Sink
	builder  *presence.Builder
	names    Refresher
	interval time.Duration
	maxIter  int
	clock    clock.Clock
	cat      *i18n.Catalog
}

// New returns a Loop for opts.
func New(opts Options) *Loop {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = MaxIterations
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Catalog == nil {
		opts.Catalog = i18n.New(i18n.English)
	}
	return &Loop{
		tel:      opts.Telemetry,
		sink:     opts.Sink,
		builder:  opts.Builder,
		names:    opts.Names,
		interval: opts.Interval,
		maxIter:  opts.MaxIterations,
		clock:    opts.Clock,
		cat:      opts.Catalog,
	}
}

// ///////////////////////////////////////////////
// Run
// ///////////////////////////////////////////////

// Run ticks until the context is done, the telemetry budget is exhausted,
// or the iteration ceiling is hit. Each tick starts one interval after the
// start of the previous one; an overrunning tick is followed immediately.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info(l.cat.T("starting_update_loop", "interval", strconv.Itoa(int(l.interval/time.Second))))

	for i := 0; ; i++ {
		if i >= l.maxIter {
			slog.Warn(l.cat.T("iteration_limit"), "iterations", i)
			return ErrIterationLimit
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		start := l.clock.Now()
		if l.tel.Failed() {
			logger.Fail(slog.Default(), l.cat.T("wt_not_running"))
			CloseWithin(l.sink, CloseGrace)
			l.clock.Sleep(ctx, ShutdownGrace)
			return ErrTelemetryExhausted
		}

		f := l.Tick(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.sink.Update(ctx, f); err != nil {
			slog.Debug("presence not published", "error", err)
		}

		wait := l.interval - l.clock.Now().Sub(start)
		if wait <= 0 {
			continue
		}
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// CloseWithin closes c, giving up after d. A Close still running then is
// left behind. It reports whether Close finished in time.
func CloseWithin(c io.Closer, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Close(); err != nil {
			slog.Debug("close failed", "error", err)
		}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		slog.Warn("shutdown grace period elapsed", "grace", d)
		return false
	}
}

// Tick reads the game state once and returns the card for it.
func (l *Loop) Tick(ctx context.Context) presence.Frame {
	if l.names != nil && l.names.Refresh() {
		slog.Info(l.cat.T("vehicle_names_loaded"))
	}

	m := l.tel.MapInfo(ctx)
	switch {
	case !m.GameRunning:
		return l.builder.Basic(presence.Launching)
	case !m.Valid:
		return l.builder.Basic(presence.Hangar)
	}

	body, ok := l.tel.Indicators(ctx)
	if !ok {
		return l.builder.Basic(presence.InBattle)
	}
	v, err := vehicle.ParseIndicators(body)
	if err != nil {
		slog.Warn("indicators decoding failed", "error", err)
		return l.builder.Basic(presence.InBattle)
	}
	if vehicle.IsLoading(v.CodeName) {
		return l.builder.Basic(presence.Loading)
	}

	switch v.Army {
	case vehicle.Air:
		return l.air(ctx, v)
	case vehicle.Tank:
		return l.builder.Ground(v)
	case vehicle.Unknown, vehicle.Other:
		return l.builder.Basic(presence.InGame)
	default:
		return l.builder.Basic(presence.InGame)
	}
}

// air fetches /state for an aircraft. Missing or unparseable data yields the
// name-only air card.
func (l *Loop) air(ctx context.Context, v vehicle.State) presence.Frame {
	body, ok := l.tel.State(ctx)
	if !ok {
		return l.builder.Air(v, nil)
	}
	air, ok := vehicle.ParseAirTelemetry(body)
	if !ok {
		slog.Warn(l.cat.T("air_parse_failed"), "vehicle", v.CodeName)
		return l.builder.Air(v, nil)
	}
	logger.Trace(slog.Default(), "air telemetry", "vehicle", v.CodeName, "values", air.String())
	return l.builder.Air(v, &air)
}
