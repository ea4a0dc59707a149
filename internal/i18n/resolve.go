package i18n

import (
	"strings"

	"github.com/tartampluch/weekgrid/internal/config"
)

// Options parameterize language resolution.
type Options struct {
	// Fallback is returned when neither the preference nor any system
	// language matches the supported set.
	Fallback string

	// Supported is the set of language codes with locale tables.
	Supported []string

	// SystemLanguages is the host's locale priority list, most preferred
	// first (e.g. ["fr-FR", "en-US"]).
	SystemLanguages []string
}

// Normalize reduces a language tag to its lowercase primary subtag:
// "en-US" and "en_US.UTF-8" both normalize to "en".
func Normalize(tag string) string {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if i := strings.IndexAny(tag, "-_."); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// ResolveLanguage picks the active language. Precedence is exact: an
// explicit preference that normalizes to a supported code wins; otherwise
// the system language priority list is scanned in order for the first
// supported match; otherwise the fallback applies. A preference that
// normalizes to an unsupported code falls through to the system scan, not
// directly to the fallback.
func ResolveLanguage(preference string, opts Options) string {
	supported := make(map[string]bool, len(opts.Supported))
	for _, s := range opts.Supported {
		supported[Normalize(s)] = true
	}

	if preference != "" && preference != config.LanguageSystem {
		if code := Normalize(preference); supported[code] {
			return code
		}
	}

	for _, lang := range opts.SystemLanguages {
		if code := Normalize(lang); supported[code] {
			return code
		}
	}

	return opts.Fallback
}
