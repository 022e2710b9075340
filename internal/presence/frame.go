// Package presence turns vehicle telemetry into the strings shown on the
// Discord presence card.
package presence

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// ///////////////////////////////////////////////
// Frame
// ///////////////////////////////////////////////

// Frame is one presence card. Empty fields are omitted when sent.
type Frame struct {
	// State is the second line of the card.
	State string `json:"state,omitempty"`
	// Details is the first line of the card.
	Details string `json:"details,omitempty"`
	// LargeImage is an asset key or image URL.
	LargeImage string `json:"large_image,omitempty"`
	// LargeText is the large image tooltip.
	LargeText string `json:"large_text,omitempty"`
	// SmallImage is an asset key or image URL.
	SmallImage string `json:"small_image,omitempty"`
	// SmallText is the small image tooltip.
	SmallText string `json:"small_text,omitempty"`
}

// Hash returns a stable digest of the frame, used to skip sending an
// identical card twice in a row.
func (f Frame) Hash() string {
	data, err := json.Marshal(f)
	if err != nil {
		slog.Warn("failed to hash frame", "error", err)
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}

// discordMaxLen is the maximum character length of a presence text field.
const discordMaxLen = 128

// clip shortens s to Discord's field limit, counting runes so Cyrillic
// names are not split mid-character.
func clip(s string) string {
	if utf8.RuneCountInString(s) <= discordMaxLen {
		return s
	}
	r := []rune(s)
	return string(r[:discordMaxLen-1]) + "…"
}

// Clipped returns f with every text field cut to Discord's length limit.
func (f Frame) Clipped() Frame {
	f.State = clip(f.State)
	f.Details = clip(f.Details)
	f.LargeText = clip(f.LargeText)
	f.SmallText = clip(f.SmallText)
	return f
}
