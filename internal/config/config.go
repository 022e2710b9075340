// Package config provides configuration loading and defaults for thunderpresence.
//
// Configuration is loaded once at startup from a TOML file in the user's data
// directory and is read-only afterwards. The package covers the Discord
// application, the presence layout, the telemetry endpoint and its retry
// timing, logging, and the startup update check. A malformed or invalid file
// never stops the program: [LoadOrDefault] continues on [DefaultConfig] and
// hands back the reason for the caller to log.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/thunderpresence/thunderpresence/internal/atomicfile"
	"github.com/thunderpresence/thunderpresence/internal/migrate"
	"github.com/thunderpresence/thunderpresence/internal/paths"
)

// DefaultDiscordAppID is the Discord application that carries the War
// Thunder artwork.
const DefaultDiscordAppID = "1450643150811955282"

// DefaultTelemetryURL is where the game serves its local telemetry API.
const DefaultTelemetryURL = "http://127.0.0.1:8111"

// ///////////////////////////////////////////////
// Field Selectors
// ///////////////////////////////////////////////

// GroundField selects a ground vehicle readout for one side of the status.
type GroundField string

// Ground vehicle readouts. Speed is valid on the left only; RPM and Crew on
// the right only.
const (
	GroundSpeed GroundField = "speed"
	GroundRPM   GroundField = "rpm"
	GroundCrew  GroundField = "crew"
)

// AirField selects an aircraft readout for one side of the status.
type AirField string

// Aircraft readouts. TAS and IAS are valid on the left only; Altitude and
// Fuel on the right only.
const (
	AirTAS      AirField = "tas"
	AirIAS      AirField = "ias"
	AirAltitude AirField = "altitude"
	AirFuel     AirField = "fuel"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version used for migrations.
	Version int `toml:"version"`
	// Discord holds Discord connection settings.
	Discord DiscordConfig `toml:"discord"`
	// Display holds presence layout settings.
	Display Display `toml:"display"`
	// Telemetry holds the game API endpoint and polling cadence.
	Telemetry TelemetryConfig `toml:"telemetry"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Update holds startup release check settings.
	Update UpdateConfig `toml:"update"`
}

// DiscordConfig holds Discord connection settings.
type DiscordConfig struct {
	// AppID is the Discord application ID for Rich Presence.
	AppID string `toml:"app_id"`
}

// Display holds presence layout settings. It is immutable for a run.
type Display struct {
	// AlternateLayout moves the readouts into the large image tooltip and
	// puts the vehicle name in the status line.
	AlternateLayout bool `toml:"alternate_layout"`
	// ShowVehicleDetails fills the details line with "Playing as: <vehicle>".
	ShowVehicleDetails bool `toml:"show_vehicle_details"`
	// DefaultImage is the Discord asset key used when no vehicle image applies.
	DefaultImage string `toml:"default_image"`
	// Language is the presence and console language ("en" or "ru").
	Language string `toml:"language"`
	// LeftGroundField is the left readout for ground vehicles.
	LeftGroundField GroundField `toml:"left_ground_field"`
	// RightGroundField is the right readout for ground vehicles.
	RightGroundField GroundField `toml:"right_ground_field"`
	// LeftAirField is the left readout for aircraft.
	LeftAirField AirField `toml:"left_air_field"`
	// RightAirField is the right readout for aircraft.
	RightAirField AirField `toml:"right_air_field"`
	// HiddenVehicles lists glob patterns of vehicle code names that are
	// shown only as "In battle".
	HiddenVehicles []string `toml:"hidden_vehicles"`
}

// TelemetryConfig holds the game API endpoint and polling cadence.
type TelemetryConfig struct {
	// BaseURL is the root of the local telemetry API.
	BaseURL string `toml:"base_url"`
	// RefreshSeconds is the interval between presence updates.
	RefreshSeconds int `toml:"refresh_seconds"`
	// RequestTimeoutSeconds bounds each telemetry request.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	// RetryDelaySeconds is the wait before each repeated connection failure
	// is counted.
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// UpdateConfig holds startup release check settings.
type UpdateConfig struct {
	// Check enables the release check at startup. It is off by default
	// since no manifest is published yet; it needs ManifestURL.
	Check bool `toml:"check"`
	// ManifestURL points at a JSON document with a "version" field.
	ManifestURL string `toml:"manifest_url"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with the defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Discord: DiscordConfig{
			AppID: DefaultDiscordAppID,
		},
		Display: Display{
			AlternateLayout:    false,
			ShowVehicleDetails: true,
			DefaultImage:       "main_logo",
			Language:           "en",
			LeftGroundField:    GroundSpeed,
			RightGroundField:   GroundCrew,
			LeftAirField:       AirTAS,
			RightAirField:      AirAltitude,
			HiddenVehicles:     []string{},
		},
		Telemetry: TelemetryConfig{
			BaseURL:               DefaultTelemetryURL,
			RefreshSeconds:        7,
			RequestTimeoutSeconds: 5,
			RetryDelaySeconds:     10,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Update: UpdateConfig{
			Check:       false,
			ManifestURL: "",
		},
	}
}

// ExampleConfig returns a Config suitable for generating config.default.toml.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// Durations
// ///////////////////////////////////////////////

// RefreshInterval is the poll loop cadence.
func (t TelemetryConfig) RefreshInterval() time.Duration {
	return time.Duration(t.RefreshSeconds) * time.Second
}

// RequestTimeout bounds each telemetry request.
func (t TelemetryConfig) RequestTimeout() time.Duration {
	return time.Duration(t.RequestTimeoutSeconds) * time.Second
}

// RetryDelay is the wait applied before a repeated failure is counted.
func (t TelemetryConfig) RetryDelay() time.Duration {
	return time.Duration(t.RetryDelaySeconds) * time.Second
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// First Run
// ///////////////////////////////////////////////

// Seed reports how [Ensure] prepared config.toml.
type Seed int

const (
	// SeedExisting means config.toml was already present.
	SeedExisting Seed = iota
	// SeedDefault means the embedded default document was written.
	SeedDefault
	// SeedImported means a legacy settings.json was converted.
	SeedImported
)

// Ensure makes sure dataDir/config.toml exists. A legacy settings.json in
// dataDir is imported through the version 1 migration; otherwise
// defaultDoc is written. An unreadable or malformed settings.json is logged
// and the default document is written instead.
func Ensure(dataDir string, defaultDoc []byte) (Seed, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return SeedExisting, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return SeedExisting, fmt.Errorf("stat config file: %w", err)
	}

	legacyPath := filepath.Join(dataDir, paths.LegacySettingsFile)
	if legacy, err := os.ReadFile(legacyPath); err == nil {
		data, _, migrateErr := migrate.Config.Run(legacy, 0)
		if migrateErr == nil {
			if err := atomicfile.Write(path, data, 0o644); err != nil {
				return SeedExisting, fmt.Errorf("write imported config: %w", err)
			}
			return SeedImported, nil
		}
		slog.Warn("legacy settings could not be imported, writing defaults", "path", legacyPath, "error", migrateErr)
	}

	if err := atomicfile.Write(path, defaultDoc, 0o644); err != nil {
		return SeedExisting, fmt.Errorf("write default config: %w", err)
	}
	return SeedDefault, nil
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file from dataDir/config.toml.
// If the file doesn't exist, returns DefaultConfig.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)
	migrated := migrate.Config.NeedsMigration(version)
	if migrated {
		if version > migrate.Config.CurrentVersion {
			return nil, fmt.Errorf("config version %d is newer than supported version %d", version, migrate.Config.CurrentVersion)
		}
		if backupErr := os.WriteFile(path+".bak", data, 0o644); backupErr != nil {
			slog.Warn("failed to write config backup", "error", backupErr)
		}
		var migrateErr error
		data, _, migrateErr = migrate.Config.Run(data, version)
		if migrateErr != nil {
			return nil, fmt.Errorf("migrate config: %w", migrateErr)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}

	return cfg, nil
}

// LoadOrDefault calls [Load] and falls back to [DefaultConfig] when the file
// cannot be used. fallback is the reason, or nil when the file was used. It
// runs before logging is configured, so reporting is left to the caller.
func LoadOrDefault(dataDir string) (cfg *Config, fallback error) {
	cfg, err := Load(dataDir)
	if err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// validLanguages is the set of accepted display languages.
var validLanguages = map[string]bool{"en": true, "ru": true}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.AppID) == "" {
		return errors.New("discord.app_id must not be empty")
	}

	if !validLanguages[c.Display.Language] {
		return fmt.Errorf("invalid display.language %q: must be en or ru", c.Display.Language)
	}

	if c.Display.LeftGroundField != GroundSpeed {
		return fmt.Errorf("invalid left_ground_field %q: must be speed", c.Display.LeftGroundField)
	}

	switch c.Display.RightGroundField {
	case GroundRPM, GroundCrew:
	default:
		return fmt.Errorf("invalid right_ground_field %q: must be rpm or crew", c.Display.RightGroundField)
	}

	switch c.Display.LeftAirField {
	case AirTAS, AirIAS:
	default:
		return fmt.Errorf("invalid left_air_field %q: must be tas or ias", c.Display.LeftAirField)
	}

	switch c.Display.RightAirField {
	case AirAltitude, AirFuel:
	default:
		return fmt.Errorf("invalid right_air_field %q: must be altitude or fuel", c.Display.RightAirField)
	}

	if c.Display.DefaultImage == "" {
		return errors.New("display.default_image must not be empty")
	}

	for _, pattern := range c.Display.HiddenVehicles {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid hidden_vehicles pattern %q", pattern)
		}
	}

	if !strings.HasPrefix(c.Telemetry.BaseURL, "http://") && !strings.HasPrefix(c.Telemetry.BaseURL, "https://") {
		return fmt.Errorf("invalid telemetry.base_url %q: must be an http(s) URL", c.Telemetry.BaseURL)
	}

	if c.Telemetry.RefreshSeconds <= 0 {
		return fmt.Errorf("refresh_seconds must be > 0, got %d", c.Telemetry.RefreshSeconds)
	}

	if c.Telemetry.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be > 0, got %d", c.Telemetry.RequestTimeoutSeconds)
	}

	if c.Telemetry.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry_delay_seconds must be >= 0, got %d", c.Telemetry.RetryDelaySeconds)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	return nil
}

// ///////////////////////////////////////////////
// Hidden Vehicles
// ///////////////////////////////////////////////

// IsHidden reports whether codeName matches any hidden_vehicles pattern.
func (d Display) IsHidden(codeName string) bool {
	for _, pattern := range d.HiddenVehicles {
		matched, err := doublestar.Match(pattern, codeName)
		if err != nil {
			slog.Warn("invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
