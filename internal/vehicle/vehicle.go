// Package vehicle decodes War Thunder telemetry payloads into normalized
// vehicle records. Everything here is pure: no I/O, no logging, no state
// carried between calls.
package vehicle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ///////////////////////////////////////////////
// Army Classification
// ///////////////////////////////////////////////

// ArmyType is the closed set of vehicle kinds the presence layer renders.
type ArmyType int

const (
	// Unknown means the indicators payload carried no army field.
	Unknown ArmyType = iota
	// Air is an aircraft or helicopter.
	Air
	// Tank is any ground vehicle.
	Tank
	// Other is an army value the game reports that has no dedicated frame
	// (naval, for example).
	Other
)

// String returns the telemetry spelling of the army type.
func (a ArmyType) String() string {
	switch a {
	case Unknown:
		return "unknown"
	case Air:
		return "air"
	case Tank:
		return "tank"
	case Other:
		return "other"
	}
	return fmt.Sprintf("ArmyType(%d)", int(a))
}

// ClassifyArmy maps the raw "army" string from /indicators to an ArmyType.
func ClassifyArmy(raw string) ArmyType {
	switch strings.TrimSpace(raw) {
	case "air":
		return Air
	case "tank":
		return Tank
	case "":
		return Unknown
	default:
		return Other
	}
}

// LoadingCodeName is the placeholder vehicle the game reports while a
// battle is still loading.
const LoadingCodeName = "dummy_plane"

// IsLoading reports whether codeName is the loading placeholder. It must be
// checked on the raw code name before the army is classified, since the
// placeholder reports itself as an aircraft.
func IsLoading(codeName string) bool {
	return codeName == LoadingCodeName
}

// groundPrefix is prepended to ground vehicle code names by /indicators.
const groundPrefix = "tankModels/"

// NormalizeCodeName strips the ground-vehicle path prefix so the code name
// matches the encyclopedia and the names table.
func NormalizeCodeName(codeName string) string {
	return strings.TrimPrefix(codeName, groundPrefix)
}

// ///////////////////////////////////////////////
// Indicators
// ///////////////////////////////////////////////

// State is the normalized /indicators record for one tick.
type State struct {
	Army        ArmyType
	CodeName    string
	CrewTotal   float64
	CrewCurrent float64
	Speed       float64
	RPM         float64
}

// indicatorsRecord mirrors the subset of /indicators the presence uses.
// Every field is a pointer so an absent key is distinguishable from zero.
type indicatorsRecord struct {
	// Army is "air", "tank", or another kind string.
	Army *string `json:"army"`
	// Type is the vehicle code name, prefixed with "tankModels/" for
	// ground vehicles.
	Type *string `json:"type"`
	// CrewTotal is the number of crew slots.
	CrewTotal *float64 `json:"crew_total"`
	// CrewCurrent is the number of living crew members.
	CrewCurrent *float64 `json:"crew_current"`
	// Speed is the ground speed in km/h.
	Speed *float64 `json:"speed"`
	// RPM is the engine speed.
	RPM *float64 `json:"rpm"`
}

// ParseIndicators decodes an /indicators body. Absent numeric fields
// normalize to zero and absent strings to "". A body that is not a JSON
// object, or whose known fields have the wrong types, is an error.
func ParseIndicators(body []byte) (State, error) {
	var rec indicatorsRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return State{}, fmt.Errorf("decoding indicators: %w", err)
	}
	return State{
		Army:        ClassifyArmy(deref(rec.Army)),
		CodeName:    deref(rec.Type),
		CrewTotal:   deref(rec.CrewTotal),
		CrewCurrent: deref(rec.CrewCurrent),
		Speed:       deref(rec.Speed),
		RPM:         deref(rec.RPM),
	}, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
