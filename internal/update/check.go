// Package update checks a release manifest for a newer thunderpresence.
//
// The manifest is a small JSON document:
//
//	{"version": "1.3.0", "url": "https://example.com/releases/1.3.0"}
//
// The check runs once at startup, is bounded by a short timeout, and never
// fails the program.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/thunderpresence/thunderpresence/internal/i18n"
)

// DefaultTimeout bounds the whole check, retries included.
const DefaultTimeout = 5 * time.Second

// maxManifestSize caps how much of the manifest is read.
const maxManifestSize = 64 << 10

// Manifest is the release manifest document.
type Manifest struct {
	// Version is the latest stable release.
	Version string `json:"version"`
	// URL is where the release can be downloaded. Optional.
	URL string `json:"url,omitempty"`
}

// Options configures a check.
type Options struct {
	// ManifestURL is the manifest location. Empty skips the check.
	ManifestURL string
	// Current is the running version.
	Current string
	// Timeout bounds the check. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Catalog localizes the log lines. Defaults to English.
	Catalog *i18n.Catalog
	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// ///////////////////////////////////////////////
// Public API
// ///////////////////////////////////////////////

// Check fetches the manifest and logs when a newer release exists. It
// returns the manifest and whether it is newer than the running version.
// Failures are logged at debug level and reported as not newer.
func Check(ctx context.Context, opts Options) (Manifest, bool) {
	if opts.ManifestURL == "" {
		slog.Warn("skipping version check: update.manifest_url is empty")
		return Manifest{}, false
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Catalog == nil {
		opts.Catalog = i18n.New(i18n.English)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	m, err := fetchLatest(ctx, newClient(opts.Transport), opts.ManifestURL)
	if err != nil {
		slog.Debug(opts.Catalog.T("update_check_failed"), "error", err)
		return Manifest{}, false
	}
	if m.Version == "" || m.Version == opts.Current {
		return m, false
	}
	if !semverLess(opts.Current, m.Version) {
		return m, false
	}

	args := []any{"current", opts.Current, "latest", m.Version}
	if m.URL != "" {
		args = append(args, "url", m.URL)
	}
	slog.Info(opts.Catalog.T("update_available"), args...)
	return m, true
}

// ///////////////////////////////////////////////
// Internal helpers
// ///////////////////////////////////////////////

// newClient returns a client that retries transient failures twice with a
// short backoff. The overall deadline comes from the request context.
func newClient(rt http.RoundTripper) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = time.Second
	c.Logger = nil
	if rt != nil {
		c.HTTPClient.Transport = rt
	}
	return c
}

// fetchLatest downloads and decodes the manifest at url.
func fetchLatest(ctx context.Context, client *retryablehttp.Client, url string) (Manifest, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading response: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version == "" {
		return Manifest{}, errors.New("manifest has no version")
	}
	return m, nil
}

// semverLess reports whether a < b. Strings that are not major.minor.patch
// never compare less. A pre-release sorts before the same release
// ("0.1.0-dev" < "0.1.0"); two pre-releases of one version are unordered.
func semverLess(a, b string) bool {
	pa, okA := parseSemver(a)
	pb, okB := parseSemver(b)
	if !okA || !okB {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return hasPreRelease(a) && !hasPreRelease(b)
}

// hasPreRelease reports whether a version string carries a "-" suffix.
func hasPreRelease(s string) bool {
	return strings.Contains(strings.TrimPrefix(s, "v"), "-")
}

// parseSemver splits "v1.2.3" or "0.1.0-dev+abc" into [major minor patch].
// Pre-release and build suffixes are ignored.
func parseSemver(s string) ([3]int, bool) {
	var out [3]int
	s = strings.TrimPrefix(s, "v")
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return out, false
	}
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return out, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
