// Package migrate upgrades on-disk documents one schema version at a time.
//
// Version 0 is reserved for documents that predate versioning. For the
// config registry that is the legacy settings.json format, so its version 1
// migration converts JSON into the first TOML schema.
package migrate

import (
	"fmt"
	"log/slog"
	"slices"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Migration upgrades a document from the previous version to Version.
type Migration struct {
	// Version is the schema version this migration produces.
	Version int
	// Description is a short label for log output.
	Description string
	// Upgrade transforms the document.
	Upgrade func(data []byte) ([]byte, error)
}

// ///////////////////////////////////////////////
// Public API
// ///////////////////////////////////////////////

// Run applies, in version order, every migration newer than fromVersion.
// It returns the upgraded document and the version it reached. On failure
// the returned version is the last one successfully applied.
func Run(data []byte, fromVersion int, migrations []Migration) ([]byte, int, error) {
	ordered := slices.SortedFunc(slices.Values(migrations), func(a, b Migration) int {
		return a.Version - b.Version
	})
	version := fromVersion
	for _, m := range ordered {
		if m.Version <= version {
			continue
		}
		slog.Info("applying migration", "from", version, "to", m.Version, "description", m.Description)
		out, err := m.Upgrade(data)
		if err != nil {
			return nil, version, fmt.Errorf("migration to v%d failed: %w", m.Version, err)
		}
		data, version = out, m.Version
	}
	return data, version, nil
}

// NeedsMigration reports whether a document at fileVersion differs from
// currentVersion or is older than any registered migration.
func NeedsMigration(fileVersion, currentVersion int, migrations []Migration) bool {
	if fileVersion != currentVersion {
		return true
	}
	return slices.ContainsFunc(migrations, func(m Migration) bool {
		return fileVersion < m.Version
	})
}
