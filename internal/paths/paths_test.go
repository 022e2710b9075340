package paths

import (
	"path/filepath"
	"testing"
)

// ///////////////////////////////////////////////
// Constant Value Tests
// ///////////////////////////////////////////////

func TestConstantValues(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DataDirRel", DataDirRel, ".thunderpresence"},
		{"PIDFile", PIDFile, "thunderpresence.pid"},
		{"ConfigFile", ConfigFile, "config.toml"},
		{"LogFile", LogFile, "thunderpresence.log"},
		{"VehiclesFile", VehiclesFile, "vehicles.toml"},
		{"LegacySettingsFile", LegacySettingsFile, "settings.json"},
		{"BinaryName", BinaryName, "thunderpresence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// DataDir Method Tests
// ///////////////////////////////////////////////

func TestDataDirMethods(t *testing.T) {
	root := filepath.Join("home", "pilot", ".thunderpresence")
	d := DataDir{Root: root}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"PID", d.PID(), filepath.Join(root, "thunderpresence.pid")},
		{"Config", d.Config(), filepath.Join(root, "config.toml")},
		{"Log", d.Log(), filepath.Join(root, "thunderpresence.log")},
		{"Vehicles", d.Vehicles(), filepath.Join(root, "vehicles.toml")},
		{"LegacySettings", d.LegacySettings(), filepath.Join(root, "settings.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDataDirEmptyRoot(t *testing.T) {
	d := DataDir{Root: ""}

	// With an empty root, methods should return just the filename.
	if got := d.PID(); got != PIDFile {
		t.Errorf("PID() with empty root = %q, want %q", got, PIDFile)
	}
	if got := d.Config(); got != ConfigFile {
		t.Errorf("Config() with empty root = %q, want %q", got, ConfigFile)
	}
}
