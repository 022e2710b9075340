// Tests for the startup release check: manifest decoding, version ordering,
// and the never-fail contract.
package update

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// ///////////////////////////////////////////////
// parseSemver and semverLess
// ///////////////////////////////////////////////

func TestParseSemver(t *testing.T) {
	tests := []struct {
		input  string
		want   [3]int
		wantOK bool
	}{
		{"1.2.3", [3]int{1, 2, 3}, true},
		{"v1.2.3", [3]int{1, 2, 3}, true},
		{"0.0.0-dev", [3]int{0, 0, 0}, true},
		{"1.0.0-beta+build123", [3]int{1, 0, 0}, true},
		{"1.2.3-rc.1", [3]int{1, 2, 3}, true},
		{"1.2.3+metadata", [3]int{1, 2, 3}, true},
		{"10.20.30", [3]int{10, 20, 30}, true},

		{"", [3]int{}, false},
		{"1.2", [3]int{}, false},
		{"v", [3]int{}, false},
		{"1.2.x", [3]int{}, false},
		{"1..3", [3]int{}, false},
		{"1.2.3.4", [3]int{}, false},
		{"-1.2.3", [3]int{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseSemver(tt.input)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("parseSemver(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSemverLess(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "1.2.3", "1.2.3", false},
		{"major", "0.9.9", "1.0.0", true},
		{"major_greater", "2.0.0", "1.9.9", false},
		{"minor", "1.0.0", "1.1.0", true},
		{"patch", "1.0.0", "1.0.1", true},
		{"v_prefix", "v0.1.0", "0.2.0", true},
		{"prerelease_before_release", "0.1.0-dev", "0.1.0", true},
		{"release_after_prerelease", "0.1.0", "0.1.0-dev", false},
		{"prereleases_unordered", "1.0.0-alpha", "1.0.0-beta", false},
		{"invalid_a", "dev", "1.0.0", false},
		{"invalid_b", "1.0.0", "latest", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := semverLess(tt.a, tt.b); got != tt.want {
				t.Errorf("semverLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Check
// ///////////////////////////////////////////////

func manifestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		current   string
		wantNewer bool
		wantVer   string
	}{
		{"newer", http.StatusOK, `{"version": "1.2.0", "url": "https://example.com/1.2.0"}`, "1.0.0", true, "1.2.0"},
		{"same", http.StatusOK, `{"version": "1.0.0"}`, "1.0.0", false, "1.0.0"},
		{"older", http.StatusOK, `{"version": "0.9.0"}`, "1.0.0", false, "0.9.0"},
		{"dev_build", http.StatusOK, `{"version": "1.2.0"}`, "dev", false, "1.2.0"},
		{"not_found", http.StatusNotFound, `{}`, "1.0.0", false, ""},
		{"invalid_json", http.StatusOK, `not json`, "1.0.0", false, ""},
		{"missing_version", http.StatusOK, `{"url": "x"}`, "1.0.0", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := manifestServer(t, tt.status, tt.body)

			m, newer := Check(context.Background(), Options{ManifestURL: srv.URL, Current: tt.current})
			if newer != tt.wantNewer {
				t.Errorf("newer = %v, want %v", newer, tt.wantNewer)
			}
			if m.Version != tt.wantVer {
				t.Errorf("version = %q, want %q", m.Version, tt.wantVer)
			}
		})
	}
}

func TestCheck_EmptyManifestURL(t *testing.T) {
	if _, newer := Check(context.Background(), Options{Current: "1.0.0"}); newer {
		t.Fatal("Check() with no manifest URL reported a newer version")
	}
}

func TestCheck_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"version": "2.0.0"}`)
	}))
	defer srv.Close()

	m, newer := Check(context.Background(), Options{ManifestURL: srv.URL, Current: "1.0.0"})
	if !newer || m.Version != "2.0.0" {
		t.Errorf("Check() = %+v, %v; want 2.0.0 after one retry", m, newer)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestCheck_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, newer := Check(context.Background(), Options{ManifestURL: srv.URL, Current: "1.0.0", Timeout: 100 * time.Millisecond})
	if newer {
		t.Error("timed out check reported a newer version")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Check() took %v, want it bounded by the timeout", elapsed)
	}
}
