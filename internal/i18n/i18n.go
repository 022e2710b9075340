// Package i18n holds the operator-facing and presence-facing message catalog.
//
// Two languages ship with the binary: English and Russian. The configured
// language is matched against them with [language.NewMatcher], so values like
// "ru-RU" or "en_GB" resolve sensibly; anything unsupported falls back to
// English. Lookups that miss in the active language fall back to English and
// finally to the key itself, so a missing translation never blanks a field.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// ///////////////////////////////////////////////
// Languages
// ///////////////////////////////////////////////

// Supported language codes, as used in config and in the vehicle name table.
const (
	English = "en"
	Russian = "ru"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// Match resolves a free-form language setting to a supported language code.
func Match(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return English
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// ///////////////////////////////////////////////
// Catalog
// ///////////////////////////////////////////////

// Catalog looks up messages for a single language.
type Catalog struct {
	lang string
}

// New returns a Catalog for the given language setting.
func New(lang string) *Catalog {
	return &Catalog{lang: Match(lang)}
}

// Lang returns the resolved language code ("en" or "ru").
func (c *Catalog) Lang() string { return c.lang }

// T returns the message for key with {name} placeholders substituted from
// args, which are alternating name/value pairs:
//
//	c.T("attempt_waiting", "attempt", "2", "seconds", "10")
func (c *Catalog) T(key string, args ...string) string {
	msg := lookup(c.lang, key)
	if len(args) < 2 {
		return msg
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func lookup(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[English][key]; ok {
		return s
	}
	return key
}
