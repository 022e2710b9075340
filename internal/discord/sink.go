package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/thunderpresence/thunderpresence/internal/clock"
	"github.com/thunderpresence/thunderpresence/internal/i18n"
	"github.com/thunderpresence/thunderpresence/internal/logger"
	"github.com/thunderpresence/thunderpresence/internal/presence"
)

// ErrAbandoned is returned by [Sink.Update] once the sink has given up for
// the rest of the run.
var ErrAbandoned = errors.New("discord presence abandoned")

const (
	// connectAttempts is the number of sessions Connect tries to open.
	connectAttempts = 3
	// FallbackImage replaces the configured image when Discord rejects it.
	FallbackImage = "war_thunder"
	// verifyState is shown by the frame that proves a new session works.
	verifyState = "Starting"
)

// State is the lifecycle state of a [Sink].
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	// Abandoned is terminal.
	Abandoned
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Abandoned:
		return "abandoned"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// session is one IPC connection. *Client implements it.
type session interface {
	Connect(ctx context.Context) error
	SetActivity(ctx context.Context, a *Activity) error
	Close() error
}

// SinkOptions configures a Sink.
type SinkOptions struct {
	// AppID is the Discord application ID.
	AppID string
	// DefaultImage is the asset key used by the verification frame.
	DefaultImage string
	// Clock drives the connect backoff. Defaults to the real clock.
	Clock clock.Clock
	// Catalog localizes log messages. Defaults to English.
	Catalog *i18n.Catalog
}

// Sink publishes presence frames and keeps a Discord session alive. It is
// used from a single goroutine.
type Sink struct {
	newSession   func() session
	defaultImage string
	clock        clock.Clock
	cat          *i18n.Catalog

	state    State
	sess     session
	start    time.Time
	lastHash string
}

// NewSink returns a disconnected Sink.
func NewSink(opts SinkOptions) *Sink {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Catalog == nil {
		opts.Catalog = i18n.New(i18n.English)
	}
	appID := opts.AppID
	return &Sink{
		newSession:   func() session { return NewClient(appID) },
		defaultImage: opts.DefaultImage,
		clock:        opts.Clock,
		cat:          opts.Catalog,
	}
}

// State returns the current lifecycle state.
func (s *Sink) State() State { return s.state }

// StartTime is the timestamp shown as elapsed time. It is set by the first
// successful session and kept across reconnects.
func (s *Sink) StartTime() time.Time { return s.start }

// ///////////////////////////////////////////////
// Connect
// ///////////////////////////////////////////////

// Connect opens a session, trying up to three times. A missing Discord is
// retried after 2s then 4s; a rejected application ID abandons the sink at
// once. It reports whether the sink is connected.
func (s *Sink) Connect(ctx context.Context) bool {
	switch s.state {
	case Abandoned:
		return false
	case Connected:
		return true
	}
	s.state = Connecting

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		slog.Info(s.cat.T("discord_connecting", "attempt", strconv.Itoa(attempt)), logger.CategoryKey, logger.CategoryDiscord)

		err := s.open(ctx, s.defaultImage)
		if err == nil {
			slog.Info(s.cat.T("discord_connected"), logger.CategoryKey, logger.CategorySuccess)
			return true
		}
		if ctx.Err() != nil {
			s.state = Disconnected
			return false
		}

		reason := s.cat.T("discord_connection_error")
		switch {
		case errors.Is(err, ErrInvalidClientID):
			slog.Error(s.cat.T("discord_invalid_id"), "error", err)
			s.state = Abandoned
			return false
		case errors.Is(err, ErrIPCNotAvailable):
			reason = s.cat.T("discord_not_found")
		case isImageError(err):
			slog.Warn(s.cat.T("discord_image_problem"), "error", err)
			if err := s.open(ctx, FallbackImage); err == nil {
				slog.Info(s.cat.T("discord_alt_success"), logger.CategoryKey, logger.CategorySuccess)
				return true
			}
			slog.Warn(s.cat.T("discord_retry_failed"))
		default:
			slog.Warn(reason, "error", err)
		}

		if attempt == connectAttempts {
			break
		}
		wait := time.Duration(2*attempt) * time.Second
		slog.Info(s.cat.T("discord_waiting", "reason", reason, "seconds", strconv.Itoa(2*attempt)), logger.CategoryKey, logger.CategoryDiscord)
		if err := s.clock.Sleep(ctx, wait); err != nil {
			s.state = Disconnected
			return false
		}
	}

	slog.Error(s.cat.T("discord_failed_attempts", "attempts", strconv.Itoa(connectAttempts)))
	s.state = Disconnected
	return false
}

// open starts a session and pushes the verification frame with image.
func (s *Sink) open(ctx context.Context, image string) error {
	sess := s.newSession()
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	if s.start.IsZero() {
		s.start = s.clock.Now()
	}
	verify := &Activity{
		State:      verifyState,
		Details:    presence.GameTitle,
		Timestamps: &Timestamps{Start: s.start.Unix()},
		Assets:     &Assets{LargeImage: image, LargeText: presence.GameTitle},
	}
	if err := sess.SetActivity(ctx, verify); err != nil {
		sess.Close()
		return err
	}
	s.sess = sess
	s.state = Connected
	s.lastHash = ""
	return nil
}

func isImageError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "image")
}

// ///////////////////////////////////////////////
// Update
// ///////////////////////////////////////////////

// Update publishes f, reconnecting first when the session was lost. A frame
// identical to the last published one is skipped. A transport failure drops
// the session so the next call reconnects; so does cancelling ctx while
// Discord has not answered yet.
func (s *Sink) Update(ctx context.Context, f presence.Frame) error {
	if s.state == Abandoned {
		return ErrAbandoned
	}

	hash := f.Hash()
	if s.state == Connected && hash != "" && hash == s.lastHash {
		logger.Trace(slog.Default(), "presence unchanged, skipping update")
		return nil
	}

	if s.state != Connected && !s.Connect(ctx) {
		if s.state == Abandoned {
			return ErrAbandoned
		}
		return ErrNotConnected
	}

	if err := s.sess.SetActivity(ctx, s.activity(f)); err != nil {
		if ctx.Err() == nil {
			slog.Warn(s.cat.T("discord_update_failed"), "error", err)
		}
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			s.drop()
		}
		return fmt.Errorf("updating presence: %w", err)
	}

	s.lastHash = hash
	slog.Info(s.cat.T("discord_status_updated")+": "+f.State, logger.CategoryKey, logger.CategoryDiscord)
	return nil
}

// activity converts f to the wire form. Empty fields are omitted.
func (s *Sink) activity(f presence.Frame) *Activity {
	act := &Activity{
		State:      f.State,
		Details:    f.Details,
		Timestamps: &Timestamps{Start: s.start.Unix()},
	}
	assets := Assets{
		LargeImage: f.LargeImage,
		LargeText:  f.LargeText,
		SmallImage: f.SmallImage,
		SmallText:  f.SmallText,
	}
	if assets != (Assets{}) {
		act.Assets = &assets
	}
	return act
}

func (s *Sink) drop() {
	if s.sess != nil {
		s.sess.Close()
		s.sess = nil
	}
	s.state = Disconnected
	s.lastHash = ""
}

// ///////////////////////////////////////////////
// Close
// ///////////////////////////////////////////////

// Close clears the presence and releases the session. It is safe to call
// more than once and never fails; the sink is Abandoned afterwards.
func (s *Sink) Close() error {
	if s.sess != nil {
		if err := s.sess.Close(); err != nil {
			slog.Debug("discord close failed", "error", err)
		}
		s.sess = nil
	}
	s.state = Abandoned
	return nil
}
