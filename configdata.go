// Package thunderpresence provides embedded assets for the thunderpresence
// binary.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The binary writes it to the data directory on first
// run.
package thunderpresence

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time. It is generated by cmd/genconfig from config.ConfigDocs.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
