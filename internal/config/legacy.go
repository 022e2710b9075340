package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/thunderpresence/thunderpresence/internal/migrate"
)

func init() {
	migrate.Config.Register(migrate.Migration{
		Version:     1,
		Description: "import legacy settings.json",
		Upgrade:     importLegacySettings,
	})
}

// legacySettings is the settings.json document written by earlier releases.
// Every field is optional; absent keys keep the current defaults.
type legacySettings struct {
	RefreshTime    *int    `json:"refresh_time"`
	LargeImg       *string `json:"large_img"`
	AltPresence    *bool   `json:"alt_presence"`
	Lang           *string `json:"lang"`
	VehicleDetails *bool   `json:"vehicle_details"`
	LeftTankState  *string `json:"left_tank_state"`
	RightTankState *string `json:"right_tank_state"`
	LeftAirState   *string `json:"left_air_state"`
	RightAirState  *string `json:"right_air_state"`
}

// legacyAirFields maps the old air selector spellings onto [AirField].
var legacyAirFields = map[string]AirField{
	"spd":      AirTAS,
	"tas":      AirTAS,
	"ias":      AirIAS,
	"alt":      AirAltitude,
	"altitude": AirAltitude,
	"fuel":     AirFuel,
}

// importLegacySettings converts a settings.json document into a version 1
// config.toml document. Unknown selector values keep the defaults so the
// result always validates.
func importLegacySettings(data []byte) ([]byte, error) {
	var old legacySettings
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("decoding settings.json: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Version = 1
	if old.RefreshTime != nil && *old.RefreshTime > 0 {
		cfg.Telemetry.RefreshSeconds = *old.RefreshTime
	}
	if old.LargeImg != nil && *old.LargeImg != "" {
		cfg.Display.DefaultImage = *old.LargeImg
	}
	if old.AltPresence != nil {
		cfg.Display.AlternateLayout = *old.AltPresence
	}
	if old.Lang != nil && validLanguages[*old.Lang] {
		cfg.Display.Language = *old.Lang
	}
	if old.VehicleDetails != nil {
		cfg.Display.ShowVehicleDetails = *old.VehicleDetails
	}
	if old.LeftTankState != nil && GroundField(*old.LeftTankState) == GroundSpeed {
		cfg.Display.LeftGroundField = GroundSpeed
	}
	if old.RightTankState != nil {
		switch f := GroundField(*old.RightTankState); f {
		case GroundRPM, GroundCrew:
			cfg.Display.RightGroundField = f
		}
	}
	if old.LeftAirState != nil {
		if f, ok := legacyAirFields[*old.LeftAirState]; ok && (f == AirTAS || f == AirIAS) {
			cfg.Display.LeftAirField = f
		}
	}
	if old.RightAirState != nil {
		if f, ok := legacyAirFields[*old.RightAirState]; ok && (f == AirAltitude || f == AirFuel) {
			cfg.Display.RightAirField = f
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
