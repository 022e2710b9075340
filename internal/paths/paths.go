// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	PIDFile      = "thunderpresence.pid"
	ConfigFile   = "config.toml"
	LogFile      = "thunderpresence.log"
	VehiclesFile = "vehicles.toml"

	// LegacySettingsFile is the JSON settings document written by earlier
	// releases. It is imported into ConfigFile on first run.
	LegacySettingsFile = "settings.json"
)

const (
	BinaryName = "thunderpresence"
	DataDirRel = ".thunderpresence" // relative to $HOME
)

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Vehicles returns the full path to the user vehicle-name overrides.
func (d DataDir) Vehicles() string { return filepath.Join(d.Root, VehiclesFile) }

// LegacySettings returns the full path to the pre-TOML settings document.
func (d DataDir) LegacySettings() string { return filepath.Join(d.Root, LegacySettingsFile) }
