// Tests for [Run] ordering, skipping, and error propagation, for
// [NeedsMigration], and for [Registry] registration.
package migrate

import (
	"errors"
	"strings"
	"testing"
)

func appendStep(suffix string) func([]byte) ([]byte, error) {
	return func(d []byte) ([]byte, error) {
		return append(d, []byte(suffix)...), nil
	}
}

// ///////////////////////////////////////////////
// Run
// ///////////////////////////////////////////////

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		from        int
		migrations  []Migration
		wantData    string
		wantVersion int
	}{
		{
			name:        "no migrations",
			from:        1,
			wantData:    "doc",
			wantVersion: 1,
		},
		{
			name:        "already applied is skipped",
			from:        1,
			migrations:  []Migration{{Version: 1, Upgrade: appendStep("-v1")}},
			wantData:    "doc",
			wantVersion: 1,
		},
		{
			name: "applied in version order regardless of slice order",
			from: 0,
			migrations: []Migration{
				{Version: 2, Upgrade: appendStep("-v2")},
				{Version: 1, Upgrade: appendStep("-v1")},
			},
			wantData:    "doc-v1-v2",
			wantVersion: 2,
		},
		{
			name: "starts after fromVersion",
			from: 1,
			migrations: []Migration{
				{Version: 1, Upgrade: appendStep("-v1")},
				{Version: 2, Upgrade: appendStep("-v2")},
			},
			wantData:    "doc-v2",
			wantVersion: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, version, err := Run([]byte("doc"), tt.from, tt.migrations)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if string(out) != tt.wantData {
				t.Errorf("data = %q, want %q", out, tt.wantData)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %d, want %d", version, tt.wantVersion)
			}
		})
	}
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	migrations := []Migration{
		{Version: 1, Upgrade: appendStep("-v1")},
		{Version: 2, Upgrade: func([]byte) ([]byte, error) { return nil, boom }},
		{Version: 3, Upgrade: appendStep("-v3")},
	}
	_, version, err := Run([]byte("doc"), 0, migrations)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "migration to v2 failed") {
		t.Errorf("err = %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

// ///////////////////////////////////////////////
// NeedsMigration
// ///////////////////////////////////////////////

func TestNeedsMigration(t *testing.T) {
	migs := []Migration{{Version: 1}}
	tests := []struct {
		name    string
		file    int
		current int
		migs    []Migration
		want    bool
	}{
		{"up to date", 1, 1, migs, false},
		{"older file", 0, 1, migs, true},
		{"newer file", 2, 1, migs, true},
		{"pending migration at same version", 1, 1, []Migration{{Version: 2}}, true},
		{"no migrations", 1, 1, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsMigration(tt.file, tt.current, tt.migs); got != tt.want {
				t.Errorf("NeedsMigration = %v, want %v", got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

func TestRegistry_RegisterAndRun(t *testing.T) {
	r := &Registry{CurrentVersion: 1}
	r.Register(Migration{Version: 1, Description: "legacy", Upgrade: appendStep("-v1")})

	if !r.NeedsMigration(0) {
		t.Error("version 0 should need migration")
	}
	if r.NeedsMigration(1) {
		t.Error("version 1 should be current")
	}
	out, version, err := r.Run([]byte("doc"), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(out) != "doc-v1" || version != 1 {
		t.Errorf("Run = %q, %d", out, version)
	}
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	r := &Registry{CurrentVersion: 1}
	r.Register(Migration{Version: 1, Description: "first"})
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate version")
		}
	}()
	r.Register(Migration{Version: 1, Description: "second"})
}

func TestConfigRegistry(t *testing.T) {
	if Config.CurrentVersion != 1 {
		t.Fatalf("Config.CurrentVersion = %d, want 1", Config.CurrentVersion)
	}
}
