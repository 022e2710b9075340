// Tests for indicators decoding, army classification, the loading sentinel,
// and code name normalization.
package vehicle

import "testing"

// ///////////////////////////////////////////////
// ClassifyArmy
// ///////////////////////////////////////////////

func TestClassifyArmy(t *testing.T) {
	tests := []struct {
		raw  string
		want ArmyType
	}{
		{"air", Air},
		{"tank", Tank},
		{"", Unknown},
		{"ship", Other},
		{"AIR", Other},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ClassifyArmy(tt.raw); got != tt.want {
				t.Errorf("ClassifyArmy(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestArmyType_String(t *testing.T) {
	if Air.String() != "air" || Tank.String() != "tank" || Other.String() != "other" || Unknown.String() != "unknown" {
		t.Error("unexpected ArmyType spelling")
	}
	if got := ArmyType(42).String(); got != "ArmyType(42)" {
		t.Errorf("out of range = %q", got)
	}
}

// ///////////////////////////////////////////////
// Sentinel and Normalization
// ///////////////////////////////////////////////

func TestIsLoading(t *testing.T) {
	if !IsLoading("dummy_plane") {
		t.Error("dummy_plane should be the loading sentinel")
	}
	if IsLoading("tankModels/dummy_plane") || IsLoading("p-51d-5") {
		t.Error("only the exact raw code name is the sentinel")
	}
}

func TestNormalizeCodeName(t *testing.T) {
	tests := map[string]string{
		"tankModels/us_m4a1_1942_sherman": "us_m4a1_1942_sherman",
		"us_m4a1_1942_sherman":            "us_m4a1_1942_sherman",
		"p-51d-5":                         "p-51d-5",
		"":                                "",
	}
	for in, want := range tests {
		if got := NormalizeCodeName(in); got != want {
			t.Errorf("NormalizeCodeName(%q) = %q, want %q", in, got, want)
		}
	}
}

// ///////////////////////////////////////////////
// ParseIndicators
// ///////////////////////////////////////////////

func TestParseIndicators_Tank(t *testing.T) {
	body := []byte(`{"valid":true,"army":"tank","type":"tankModels/us_m4a1_1942_sherman","speed":45.6,"crew_total":4,"crew_current":3,"rpm":2400.2}`)
	got, err := ParseIndicators(body)
	if err != nil {
		t.Fatalf("ParseIndicators: %v", err)
	}
	want := State{
		Army:        Tank,
		CodeName:    "tankModels/us_m4a1_1942_sherman",
		CrewTotal:   4,
		CrewCurrent: 3,
		Speed:       45.6,
		RPM:         2400.2,
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseIndicators_AbsentFieldsAreZero(t *testing.T) {
	got, err := ParseIndicators([]byte(`{"army":"air","type":"p-51d-5"}`))
	if err != nil {
		t.Fatalf("ParseIndicators: %v", err)
	}
	if got.Army != Air || got.CodeName != "p-51d-5" {
		t.Errorf("got %+v", got)
	}
	if got.Speed != 0 || got.RPM != 0 || got.CrewTotal != 0 || got.CrewCurrent != 0 {
		t.Errorf("absent numbers should be zero, got %+v", got)
	}
}

func TestParseIndicators_Empty(t *testing.T) {
	got, err := ParseIndicators([]byte(`{"valid":false}`))
	if err != nil {
		t.Fatalf("ParseIndicators: %v", err)
	}
	if got != (State{}) {
		t.Errorf("got %+v, want zero State", got)
	}
}

func TestParseIndicators_Malformed(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"army":`, `{"speed":"fast"}`} {
		if _, err := ParseIndicators([]byte(body)); err == nil {
			t.Errorf("ParseIndicators(%q) should fail", body)
		}
	}
}
