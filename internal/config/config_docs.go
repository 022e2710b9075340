package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "display.left_air_field")
// to their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// Root
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// Discord
	"discord.app_id": {
		Comment: "Application ID for Discord Rich Presence.\nOverride with your own Discord app if you want custom images.",
	},

	// Display
	"display.alternate_layout": {
		Comment: "Layout of the presence card.\n  false: readouts in the status line, vehicle name in the image tooltip\n  true:  readouts in the image tooltip, vehicle name in the status line (ground only)",
		Alternatives: []string{
			`alternate_layout = true`,
		},
	},
	"display.show_vehicle_details": {
		Comment: "Show \"Playing as: <vehicle>\" in the details line.",
	},
	"display.default_image": {
		Comment: "Discord image key used outside of battle and as the small image.\nMust match an asset uploaded to the Discord app.",
	},
	"display.language": {
		Comment: "Language for the presence card and console messages. Options: \"en\", \"ru\"",
		Alternatives: []string{
			`language = "ru"`,
		},
	},
	"display.left_ground_field": {
		Comment: "Readouts for ground vehicles.\n  left:  \"speed\"\n  right: \"rpm\" or \"crew\"",
	},
	"display.right_ground_field": {
		Alternatives: []string{
			`right_ground_field = "rpm"`,
		},
	},
	"display.left_air_field": {
		Comment: "Readouts for aircraft.\n  left:  \"tas\" (true airspeed) or \"ias\" (indicated airspeed)\n  right: \"altitude\" or \"fuel\"",
		Alternatives: []string{
			`left_air_field = "ias"`,
		},
	},
	"display.right_air_field": {
		Alternatives: []string{
			`right_air_field = "fuel"`,
		},
	},
	"display.hidden_vehicles": {
		Comment: "Vehicle code names shown only as \"In battle\". Glob patterns supported.",
		Alternatives: []string{
			`hidden_vehicles = [`,
			`  "us_m4a1_1942_sherman",`,
			`  "germ_*",`,
			`]`,
		},
	},

	// Telemetry
	"telemetry.base_url": {
		Comment: "War Thunder local API. The game serves it while running.",
	},
	"telemetry.refresh_seconds": {
		Comment: "Seconds between presence updates.",
	},
	"telemetry.request_timeout_seconds": {
		Comment: "Timeout for each request to the game API (seconds).",
	},
	"telemetry.retry_delay_seconds": {
		Comment: "Wait before each repeated connection failure is counted (seconds).\nThe program gives up after 16 consecutive failures.",
	},

	// Log
	"log": {
		Comment: "Logging configuration",
	},
	"log.level": {
		Comment: "Minimum log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"",
		Alternatives: []string{
			`level = "debug"`,
			`level = "warn"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},

	// Update
	"update.check": {
		Comment: "Check for a newer release at startup. Needs manifest_url.",
	},
	"update.manifest_url": {
		Comment: "JSON document with a \"version\" field.",
		Alternatives: []string{
			`manifest_url = "https://example.com/thunderpresence/version.json"`,
		},
	},
}
