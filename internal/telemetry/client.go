// Package telemetry reads the War Thunder local HTTP API.
//
// The game serves three endpoints on 127.0.0.1:8111 while it runs:
// /map_info.json, /indicators, and /state. All of them share one
// [ConnectionHealth] budget. A timeout or refused connection counts against
// it; after [MaxAttempts] consecutive failures the client gives up for good
// and every later call returns immediately. Repeated failures are throttled
// by waiting the retry delay before the failure is counted, so the first
// miss is reported at once and the loop advances at most one step per
// request.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/thunderpresence/thunderpresence/internal/clock"
	"github.com/thunderpresence/thunderpresence/internal/i18n"
	"github.com/thunderpresence/thunderpresence/internal/logger"
)

// MaxAttempts is the number of consecutive connection failures after which
// the client stops trying.
const MaxAttempts = 16

// Endpoint paths.
const (
	PathMapInfo    = "/map_info.json"
	PathIndicators = "/indicators"
	PathState      = "/state"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 1 << 20

var (
	// ErrNoResponse means no usable response was received.
	ErrNoResponse = errors.New("telemetry: no response")
	// ErrUnexpectedStatus means the game answered with a non-200 status.
	ErrUnexpectedStatus = errors.New("telemetry: unexpected status")
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// ConnectionHealth is the consecutive-failure budget shared by all
// endpoints.
type ConnectionHealth struct {
	// Attempts counts consecutive transient failures.
	Attempts int
	// Failed is set when Attempts reaches MaxAttempts and is never cleared.
	Failed bool
}

// MapState is the /map_info.json summary for one tick.
type MapState struct {
	// Valid is true while a match is in progress.
	Valid bool
	// GameRunning is true when the API answered at all.
	GameRunning bool
}

// Options configures a Client. Zero fields take the defaults.
type Options struct {
	// BaseURL is the API root. Defaults to http://127.0.0.1:8111.
	BaseURL string
	// RequestTimeout bounds each request. Defaults to 5s.
	RequestTimeout time.Duration
	// RetryDelay is waited before each repeated failure is counted.
	// Defaults to 10s; a negative value disables the wait.
	RetryDelay time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// Clock drives the retry delay. Defaults to the real clock.
	Clock clock.Clock
	// Catalog localizes log messages. Defaults to English.
	Catalog *i18n.Catalog
	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// Client fetches telemetry and owns the connection budget. It is used from
// a single goroutine.
type Client struct {
	base       string
	http       *retryablehttp.Client
	userAgent  string
	retryDelay time.Duration
	clock      clock.Clock
	cat        *i18n.Catalog
	health     ConnectionHealth
}

// ///////////////////////////////////////////////
// Construction
// ///////////////////////////////////////////////

// New returns a Client for opts.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://127.0.0.1:8111"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 10 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Catalog == nil {
		opts.Catalog = i18n.New(i18n.English)
	}

	rc := retryablehttp.NewClient()
	// Retries are counted by ConnectionHealth, one per request.
	rc.RetryMax = 0
	rc.CheckRetry = func(context.Context, *http.Response, error) (bool, error) { return false, nil }
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	rc.HTTPClient.Timeout = opts.RequestTimeout
	if opts.Transport != nil {
		rc.HTTPClient.Transport = opts.Transport
	}

	return &Client{
		base:       strings.TrimRight(opts.BaseURL, "/"),
		http:       rc,
		userAgent:  opts.UserAgent,
		retryDelay: max(opts.RetryDelay, 0),
		clock:      opts.Clock,
		cat:        opts.Catalog,
	}
}

// ///////////////////////////////////////////////
// Health
// ///////////////////////////////////////////////

// Failed reports whether the connection budget is exhausted.
func (c *Client) Failed() bool { return c.health.Failed }

// Health returns a snapshot of the connection budget.
func (c *Client) Health() ConnectionHealth { return c.health }

func (c *Client) reset() {
	c.health = ConnectionHealth{}
}

// recordFailure counts one transient failure. Every failure after the first
// waits the retry delay before it is counted.
func (c *Client) recordFailure(ctx context.Context) error {
	if c.health.Attempts > 0 {
		slog.Warn(c.cat.T("attempt_waiting",
			"attempt", strconv.Itoa(c.health.Attempts+1),
			"seconds", strconv.Itoa(int(c.retryDelay/time.Second))))
		if err := c.clock.Sleep(ctx, c.retryDelay); err != nil {
			return err
		}
	}
	c.health.Attempts++
	if c.health.Attempts >= MaxAttempts {
		c.health.Failed = true
		slog.Error(c.cat.T("max_attempts_reached"), "attempts", c.health.Attempts)
	}
	return nil
}

// ///////////////////////////////////////////////
// Fetch
// ///////////////////////////////////////////////

// fetch GETs endpoint and returns the body of a 200 response.
func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	if c.health.Failed {
		return nil, ErrNoResponse
	}
	url := c.base + endpoint

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	slog.Debug("telemetry request", "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.handleError(ctx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		slog.Warn(c.cat.T("unexpected_status"), "url", url, "status", resp.StatusCode)
		c.reset()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.handleError(ctx, url, err)
	}
	c.reset()
	logger.Trace(slog.Default(), "telemetry response", "url", url, "bytes", len(body))
	return body, nil
}

// handleError classifies a request failure. Transient network errors are
// counted; anything else resets the budget.
func (c *Client) handleError(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if isTimeout(err) {
		slog.Error(c.cat.T("request_timeout"), "url", url)
	} else if isConnectionError(err) {
		slog.Error(c.cat.T("connection_error"), "url", url)
	} else {
		slog.Error(c.cat.T("request_error"), "url", url, "error", err)
		c.reset()
		return ErrNoResponse
	}
	if err := c.recordFailure(ctx); err != nil {
		return err
	}
	return ErrNoResponse
}

// isTimeout reports whether err is a request or dial timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isConnectionError reports whether err means the API could not be reached
// or dropped the connection.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// ///////////////////////////////////////////////
// Endpoints
// ///////////////////////////////////////////////

// MapInfo fetches /map_info.json. No response means the game is not
// running; a malformed body means it is running without a valid map.
func (c *Client) MapInfo(ctx context.Context) MapState {
	body, err := c.fetch(ctx, PathMapInfo)
	if err != nil {
		return MapState{}
	}
	var doc struct {
		Valid *bool `json:"valid"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		slog.Error("map info decoding failed", "error", err)
		return MapState{GameRunning: true}
	}
	return MapState{Valid: doc.Valid != nil && *doc.Valid, GameRunning: true}
}

// Indicators fetches the raw /indicators body.
func (c *Client) Indicators(ctx context.Context) ([]byte, bool) {
	body, err := c.fetch(ctx, PathIndicators)
	if err != nil {
		return nil, false
	}
	return body, true
}

// State fetches the raw /state body as text.
func (c *Client) State(ctx context.Context) (string, bool) {
	body, err := c.fetch(ctx, PathState)
	if err != nil {
		return "", false
	}
	return string(body), true
}
