package vehicle

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

// ///////////////////////////////////////////////
// Air Telemetry
// ///////////////////////////////////////////////

// AirTelemetry holds the flight instruments read from /state. A nil field
// means the quantity was not reported, which is different from zero.
type AirTelemetry struct {
	// Altitude in meters.
	Altitude *int
	// TAS is true airspeed in km/h.
	TAS *int
	// IAS is indicated airspeed in km/h.
	IAS *int
	// FuelCurrent is the remaining fuel mass in kg.
	FuelCurrent *int
	// FuelMax is the full fuel mass in kg.
	FuelMax *int
}

// /state keys. They contain commas, so they cannot be struct tags.
const (
	keyAltitude    = "H, m"
	keyTAS         = "TAS, km/h"
	keyIAS         = "IAS, km/h"
	keyFuelCurrent = "Mfuel, kg"
	keyFuelMax     = "Mfuel0, kg"
)

func (a *AirTelemetry) fields() map[string]**int {
	return map[string]**int{
		keyAltitude:    &a.Altitude,
		keyTAS:         &a.TAS,
		keyIAS:         &a.IAS,
		keyFuelCurrent: &a.FuelCurrent,
		keyFuelMax:     &a.FuelMax,
	}
}

// Known reports how many quantities are populated.
func (a AirTelemetry) Known() int {
	n := 0
	for _, p := range a.fields() {
		if *p != nil {
			n++
		}
	}
	return n
}

// String renders the record in the /state wire shape, with unknown
// quantities omitted.
func (a AirTelemetry) String() string {
	out := make(map[string]int)
	for key, p := range a.fields() {
		if *p != nil {
			out[key] = **p
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ParseAirTelemetry extracts the five flight instruments from a /state body.
//
// A syntactically valid JSON document is authoritative: only its numeric
// values are used. The regular-expression scan runs only when the body is
// not valid JSON, trying a quoted-key and then a bare-key pattern per
// quantity. The boolean is false only when no quantity was found.
func ParseAirTelemetry(body string) (AirTelemetry, bool) {
	var out AirTelemetry
	if json.Valid([]byte(body)) {
		out = parseAirJSON(body)
	} else {
		out = parseAirText(body)
	}
	return out, out.Known() > 0
}

// parseAirJSON decodes the known keys one by one so that a null or mistyped
// value only loses that quantity. A document that is not an object yields
// nothing.
func parseAirJSON(body string) AirTelemetry {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return AirTelemetry{}
	}
	var out AirTelemetry
	for key, dst := range out.fields() {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var f *float64
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		*dst = truncate(f)
	}
	return out
}

func truncate(f *float64) *int {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	v := *f
	if v > math.MaxInt32 || v < math.MinInt32 {
		return nil
	}
	n := int(v)
	return &n
}

// ///////////////////////////////////////////////
// Text Fallback
// ///////////////////////////////////////////////

// airPattern pairs the quoted and bare spellings of one instrument key.
type airPattern struct {
	quoted *regexp.Regexp
	bare   *regexp.Regexp
	set    func(*AirTelemetry, *int)
}

var airPatterns = []airPattern{
	{
		quoted: regexp.MustCompile(`"H,\s*m"\s*:\s*([0-9]+\.?[0-9]*)`),
		bare:   regexp.MustCompile(`H,\s*m:\s*([0-9]+\.?[0-9]*)`),
		set:    func(a *AirTelemetry, v *int) { a.Altitude = v },
	},
	{
		quoted: regexp.MustCompile(`"TAS,\s*km/h"\s*:\s*([0-9]+\.?[0-9]*)`),
		bare:   regexp.MustCompile(`TAS,\s*km/h:\s*([0-9]+\.?[0-9]*)`),
		set:    func(a *AirTelemetry, v *int) { a.TAS = v },
	},
	{
		quoted: regexp.MustCompile(`"IAS,\s*km/h"\s*:\s*([0-9]+\.?[0-9]*)`),
		bare:   regexp.MustCompile(`IAS,\s*km/h:\s*([0-9]+\.?[0-9]*)`),
		set:    func(a *AirTelemetry, v *int) { a.IAS = v },
	},
	{
		quoted: regexp.MustCompile(`"Mfuel,\s*kg"\s*:\s*([0-9]+\.?[0-9]*)`),
		bare:   regexp.MustCompile(`Mfuel,\s*kg:\s*([0-9]+\.?[0-9]*)`),
		set:    func(a *AirTelemetry, v *int) { a.FuelCurrent = v },
	},
	{
		quoted: regexp.MustCompile(`"Mfuel0,\s*kg"\s*:\s*([0-9]+\.?[0-9]*)`),
		bare:   regexp.MustCompile(`Mfuel0,\s*kg:\s*([0-9]+\.?[0-9]*)`),
		set:    func(a *AirTelemetry, v *int) { a.FuelMax = v },
	},
}

func parseAirText(body string) AirTelemetry {
	var out AirTelemetry
	for _, p := range airPatterns {
		for _, re := range []*regexp.Regexp{p.quoted, p.bare} {
			m := re.FindStringSubmatch(body)
			if m == nil {
				continue
			}
			f, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if v := truncate(&f); v != nil {
				p.set(&out, v)
				break
			}
		}
	}
	return out
}
