// Package main implements the genconfig tool that writes config.default.toml
// from config.ExampleConfig().
//
// It is invoked by go generate via the directive in internal/config/config.go.
package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/thunderpresence/thunderpresence/internal/config"
)

func main() {
	// go generate runs from the package directory (internal/config/).
	// With go.mod at root, ../../ reaches the repo root where configdata.go
	// embeds config.default.toml.
	outPath := pflag.StringP("out", "o", "../../config.default.toml", "Output path")
	pflag.Parse()

	result, err := render(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, []byte(result), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *outPath)
}

// render encodes cfg as TOML and annotates every key found in docs with its
// comment and commented-out alternatives.
func render(cfg *config.Config, docs map[string]config.FieldDoc) (string, error) {
	var raw bytes.Buffer
	if err := toml.NewEncoder(&raw).Encode(cfg); err != nil {
		return "", err
	}

	lines := strings.Split(raw.String(), "\n")
	out := []string{
		"# ///////////////////////////////////////////////",
		"# ThunderPresence Configuration",
		"# ///////////////////////////////////////////////",
		"",
	}

	// Current TOML section path for field lookup
	var sectionStack []string
	// Doc keys already emitted, so omitted fields can be injected
	emittedKeys := map[string]bool{}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// The encoder's blank lines are dropped; spacing is managed here.
		if trimmed == "" {
			continue
		}

		// Section headers: [foo] or [foo.bar]
		if strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[[") {
			injectOmitted(&out, docs, sectionStack, emittedKeys)

			section := strings.Trim(trimmed, "[] ")
			sectionStack = parseSectionPath(section)

			out = append(out, "", fmt.Sprintf("# ///// %s /////", sectionName(section)), "")
			if doc, ok := docs[section]; ok && doc.Comment != "" {
				out = appendComment(out, doc.Comment)
			}
			out = append(out, trimmed)
			continue
		}

		if !strings.Contains(trimmed, "=") || strings.HasPrefix(trimmed, "#") {
			out = append(out, trimmed)
			continue
		}

		key := strings.TrimSpace(strings.SplitN(trimmed, "=", 2)[0])
		fullPath := key
		if len(sectionStack) > 0 {
			fullPath = strings.Join(sectionStack, ".") + "." + key
		}
		emittedKeys[fullPath] = true

		doc, ok := docs[fullPath]
		if !ok {
			out = append(out, trimmed)
			continue
		}
		if doc.Comment != "" {
			out = appendComment(out, doc.Comment)
		}
		out = append(out, trimmed)
		for _, alt := range doc.Alternatives {
			out = append(out, "# "+alt)
		}
	}

	injectOmitted(&out, docs, sectionStack, emittedKeys)

	result := strings.Join(out, "\n")
	return strings.TrimRight(result, "\n") + "\n", nil
}

// appendComment appends each line of comment prefixed with "# ".
func appendComment(out []string, comment string) []string {
	for _, cl := range strings.Split(comment, "\n") {
		out = append(out, "# "+cl)
	}
	return out
}

// injectOmitted appends commented-out entries for documented keys that
// belong to the current section but were not emitted by the TOML encoder,
// so every documented option appears in the generated file. Keys are sorted
// for deterministic ordering.
func injectOmitted(out *[]string, docs map[string]config.FieldDoc, sectionStack []string, emitted map[string]bool) {
	if len(sectionStack) == 0 {
		return
	}
	prefix := strings.Join(sectionStack, ".") + "."

	var omitted []string
	for path := range docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if strings.Contains(rest, ".") || emitted[path] {
			continue
		}
		omitted = append(omitted, path)
	}
	sort.Strings(omitted)

	for _, path := range omitted {
		doc := docs[path]
		*out = append(*out, "")
		if doc.Comment != "" {
			*out = appendComment(*out, doc.Comment)
		}
		for _, alt := range doc.Alternatives {
			*out = append(*out, "# "+alt)
		}
		emitted[path] = true
	}
}

// parseSectionPath splits a dotted TOML section header (e.g. "display.hud")
// into its path segments.
func parseSectionPath(section string) []string {
	return strings.Split(section, ".")
}

// sectionName returns the last dotted segment of a section header with its
// first letter capitalized: "display.hud" yields "Hud".
func sectionName(section string) string {
	parts := strings.Split(section, ".")
	last := parts[len(parts)-1]
	if len(last) == 0 {
		return ""
	}
	return strings.ToUpper(last[:1]) + last[1:]
}
