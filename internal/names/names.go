// Package names resolves vehicle code names to display names.
//
// A built-in table covers common vehicles. Users can add or correct entries
// in vehicles.toml in the data directory:
//
//	[vehicles."us_m4a1_1942_sherman"]
//	en = "M4A1 Sherman"
//	ru = "M4A1 Шерман"
//
// The override file is watched with fsnotify. The poll loop calls
// [Table.Refresh] at the start of every tick, which drains pending change
// events without blocking and reloads the file when it changed. When
// fsnotify is unavailable, Refresh falls back to comparing the file's
// modification time.
package names

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// ///////////////////////////////////////////////
// Override File
// ///////////////////////////////////////////////

// overrideFile is the vehicles.toml document shape.
type overrideFile struct {
	// Vehicles maps code name to language code to display name.
	Vehicles map[string]map[string]string `toml:"vehicles"`
}

// LoadOverrides reads a vehicles.toml file. A missing file yields an empty
// map and no error.
func LoadOverrides(path string) (map[string]map[string]string, error) {
	var doc overrideFile
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]map[string]string{}, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if doc.Vehicles == nil {
		doc.Vehicles = map[string]map[string]string{}
	}
	return doc.Vehicles, nil
}

// ///////////////////////////////////////////////
// Table
// ///////////////////////////////////////////////

// Table resolves display names from the override file first and the
// built-in table second. It is used from the poll loop's goroutine only.
type Table struct {
	// path is the vehicles.toml location; empty disables overrides.
	path string
	// overrides is the last successfully parsed override file.
	overrides map[string]map[string]string
	// fsw watches the override file's directory; nil when polling.
	fsw *fsnotify.Watcher
	// modTime is the override file's mtime at the last load, used when
	// fsw is nil.
	modTime time.Time
}

// New creates a Table backed by the override file at path and loads it
// once. An empty path gives a Table with only the built-in names. Watch
// failures are logged and degrade to mtime polling; they are not errors.
func New(path string) *Table {
	t := &Table{path: path, overrides: map[string]map[string]string{}}
	if path == "" {
		return t
	}
	t.reload()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling for vehicle names", "error", err)
		return t
	}
	// Watch the directory so the file can be created after startup.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		slog.Info("cannot watch vehicle names directory, falling back to polling", "path", filepath.Dir(path), "error", err)
		fsw.Close()
		return t
	}
	t.fsw = fsw
	return t
}

// Lookup returns the display name of codeName in lang, if one is known.
func (t *Table) Lookup(codeName, lang string) (string, bool) {
	if byLang, ok := t.overrides[codeName]; ok {
		if name := byLang[lang]; name != "" {
			return name, true
		}
	}
	if byLang, ok := builtin[codeName]; ok {
		if name := byLang[lang]; name != "" {
			return name, true
		}
	}
	return "", false
}

// Refresh reloads the override file if it changed since the last call. It
// never blocks and reports whether a reload happened.
func (t *Table) Refresh() bool {
	if t.path == "" {
		return false
	}
	if t.fsw == nil {
		return t.refreshByModTime()
	}

	changed := false
	for {
		select {
		case event, ok := <-t.fsw.Events:
			if !ok {
				t.fsw = nil
				return t.finishRefresh(changed)
			}
			if filepath.Clean(event.Name) == filepath.Clean(t.path) &&
				(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
				changed = true
			}
		case err, ok := <-t.fsw.Errors:
			if ok {
				slog.Info("fsnotify error, switching to polling for vehicle names", "error", err)
			}
			t.fsw.Close()
			t.fsw = nil
			return t.finishRefresh(true)
		default:
			return t.finishRefresh(changed)
		}
	}
}

func (t *Table) finishRefresh(changed bool) bool {
	if !changed {
		return false
	}
	t.reload()
	return true
}

func (t *Table) refreshByModTime() bool {
	var mod time.Time
	if info, err := os.Stat(t.path); err == nil {
		mod = info.ModTime()
	}
	if mod.Equal(t.modTime) {
		return false
	}
	t.reload()
	return true
}

// reload parses the override file, keeping the previous overrides when the
// new document is malformed.
func (t *Table) reload() {
	if info, err := os.Stat(t.path); err == nil {
		t.modTime = info.ModTime()
	} else {
		t.modTime = time.Time{}
	}
	overrides, err := LoadOverrides(t.path)
	if err != nil {
		slog.Warn("failed to load vehicle names, keeping previous table", "error", err)
		return
	}
	t.overrides = overrides
	slog.Debug("vehicle names loaded", "path", t.path, "overrides", len(overrides))
}

// Close stops watching the override file.
func (t *Table) Close() error {
	if t.fsw == nil {
		return nil
	}
	err := t.fsw.Close()
	t.fsw = nil
	if err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}
	return nil
}
