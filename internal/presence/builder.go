package presence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thunderpresence/thunderpresence/internal/config"
	"github.com/thunderpresence/thunderpresence/internal/i18n"
	"github.com/thunderpresence/thunderpresence/internal/vehicle"
)

// GameTitle is the tooltip of the default image.
const GameTitle = "War Thunder"

// imageURLFormat builds a vehicle image from its code name.
const imageURLFormat = "https://static.encyclopedia.warthunder.com/images/%s.png"

// ///////////////////////////////////////////////
// Status
// ///////////////////////////////////////////////

// Status is a game state that has a fixed, vehicle-independent card.
type Status int

const (
	// Launching means the telemetry API is unreachable.
	Launching Status = iota
	// Hangar means the game is running with no match in progress.
	Hangar
	// Loading means a match is loading.
	Loading
	// InBattle means a match is running but the vehicle is unknown.
	InBattle
	// InGame means a match is running with a vehicle kind that has no
	// dedicated card.
	InGame
)

// messageKey returns the catalog key of the status line.
func (s Status) messageKey() string {
	switch s {
	case Launching:
		return "status_launching"
	case Hangar:
		return "status_hangar"
	case Loading:
		return "status_loading"
	case InBattle:
		return "status_in_battle"
	case InGame:
		return "status_in_game"
	}
	panic(fmt.Sprintf("presence: unknown status %d", int(s)))
}

// String returns the status name for logs.
func (s Status) String() string {
	return strings.TrimPrefix(s.messageKey(), "status_")
}

// ///////////////////////////////////////////////
// Builder
// ///////////////////////////////////////////////

// Resolver looks up a vehicle display name.
type Resolver interface {
	Lookup(codeName, lang string) (string, bool)
}

// Builder renders frames for one display configuration and language.
type Builder struct {
	display config.Display
	cat     *i18n.Catalog
	names   Resolver
}

// NewBuilder returns a Builder. names may be nil, in which case every
// vehicle is shown by its code name.
func NewBuilder(display config.Display, cat *i18n.Catalog, names Resolver) *Builder {
	return &Builder{display: display, cat: cat, names: names}
}

// Basic renders the card for a vehicle-independent status.
func (b *Builder) Basic(s Status) Frame {
	return Frame{
		State:      b.cat.T(s.messageKey()),
		LargeImage: b.display.DefaultImage,
		LargeText:  GameTitle,
	}.Clipped()
}

// Ground renders the card for a ground vehicle from its indicators.
func (b *Builder) Ground(v vehicle.State) Frame {
	code := vehicle.NormalizeCodeName(v.CodeName)
	if b.display.IsHidden(code) {
		return b.Basic(InBattle)
	}
	name := b.vehicleName(code)

	var left, right string
	switch b.display.LeftGroundField {
	case config.GroundSpeed:
		if v.Speed > 0 {
			left = b.cat.T("field_speed") + ": " + strconv.Itoa(int(v.Speed)) + " km/h"
		}
	}
	switch b.display.RightGroundField {
	case config.GroundRPM:
		if v.RPM > 0 {
			right = b.cat.T("field_rpm") + ": " + strconv.Itoa(int(v.RPM))
		}
	case config.GroundCrew:
		if v.CrewTotal > 0 {
			right = fmt.Sprintf("%s: %d/%d", b.cat.T("field_crew"), int(v.CrewCurrent), int(v.CrewTotal))
		}
	}

	f := b.vehicleFrame(code, name)
	readout := b.join(left, right)
	if b.display.AlternateLayout {
		f.LargeText = readout
		f.State = name
	} else {
		f.State = readout
		f.LargeText = name
	}
	return f.Clipped()
}

// Air renders the card for an aircraft. A nil air means /state gave
// nothing usable, and the card falls back to the vehicle name with a
// generic status.
func (b *Builder) Air(v vehicle.State, air *vehicle.AirTelemetry) Frame {
	code := v.CodeName
	if b.display.IsHidden(code) {
		return b.Basic(InBattle)
	}
	name := b.vehicleName(code)
	f := b.vehicleFrame(code, name)

	if air == nil {
		f.State = b.cat.T(InBattle.messageKey())
		f.LargeText = name
		return f.Clipped()
	}

	var left, right string
	switch b.display.LeftAirField {
	case config.AirTAS:
		if air.TAS != nil {
			left = fmt.Sprintf("%s: %d km/h", b.cat.T("field_tas"), *air.TAS)
		}
	case config.AirIAS:
		if air.IAS != nil {
			left = fmt.Sprintf("%s: %d km/h", b.cat.T("field_ias"), *air.IAS)
		}
	}
	switch b.display.RightAirField {
	case config.AirAltitude:
		if air.Altitude != nil {
			right = fmt.Sprintf("%s: %d m", b.cat.T("field_altitude"), *air.Altitude)
		}
	case config.AirFuel:
		if air.FuelCurrent != nil && air.FuelMax != nil {
			right = fmt.Sprintf("%s: %d/%d kg", b.cat.T("field_fuel"), *air.FuelCurrent, *air.FuelMax)
		}
	}

	readout := b.join(left, right)
	if b.display.AlternateLayout {
		f.LargeText = readout
		f.State = ""
	} else {
		f.State = readout
		f.LargeText = name
	}
	return f.Clipped()
}

// join combines the two readouts. With neither present the generic
// in-battle text stands in.
func (b *Builder) join(left, right string) string {
	switch {
	case left != "" && right != "":
		return left + " | " + right
	case left != "":
		return left
	case right != "":
		return right
	default:
		return b.cat.T(InBattle.messageKey())
	}
}

// vehicleFrame fills the fields shared by ground and air cards.
func (b *Builder) vehicleFrame(code, name string) Frame {
	f := Frame{
		LargeImage: b.ImageKey(code),
		SmallImage: b.display.DefaultImage,
		SmallText:  GameTitle,
	}
	if b.display.ShowVehicleDetails {
		f.Details = b.cat.T("playing_as", "vehicle", name)
	}
	return f
}

// vehicleName resolves a display name, falling back to the code name with
// underscores shown as spaces.
func (b *Builder) vehicleName(code string) string {
	if b.names != nil {
		if name, ok := b.names.Lookup(code, b.cat.Lang()); ok {
			return name
		}
	}
	return strings.ReplaceAll(code, "_", " ")
}

// ImageKey returns the encyclopedia image URL of a vehicle, or the default
// image key when the code name is empty.
func (b *Builder) ImageKey(code string) string {
	if code == "" {
		return b.display.DefaultImage
	}
	return fmt.Sprintf(imageURLFormat, code)
}
