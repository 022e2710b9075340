package migrate

import "fmt"

// Registry is the migration list for one document kind.
type Registry struct {
	// CurrentVersion is the schema version the program reads.
	CurrentVersion int
	// Migrations holds the registered upgrades. Exported so tests can swap
	// the list for a single registry.
	Migrations []Migration
}

// Register adds m. It panics on a duplicate version, which is a
// programming error caught at init time.
func (r *Registry) Register(m Migration) {
	for _, existing := range r.Migrations {
		if existing.Version == m.Version {
			panic(fmt.Sprintf("migrate: duplicate migration version %d (description: %q)", m.Version, m.Description))
		}
	}
	r.Migrations = append(r.Migrations, m)
}

// NeedsMigration reports whether a document at fileVersion must be upgraded.
func (r *Registry) NeedsMigration(fileVersion int) bool {
	return NeedsMigration(fileVersion, r.CurrentVersion, r.Migrations)
}

// Run applies the registered migrations newer than fromVersion.
func (r *Registry) Run(data []byte, fromVersion int) ([]byte, int, error) {
	return Run(data, fromVersion, r.Migrations)
}

// Config is the registry for config.toml. Its version 1 migration, which
// imports settings.json, is registered by the config package.
var Config = &Registry{CurrentVersion: 1}
