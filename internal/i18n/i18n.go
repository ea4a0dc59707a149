// Package i18n resolves the active display language and translates UI
// strings. Locale tables are embedded; the active language is chosen from
// the user preference, the system locale priority list and a fallback, in
// that order.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/jeandeaual/go-locale"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/weekgrid/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Resolver owns the translation bundle and the active localizer.
type Resolver struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	supported []string
	active    string

	// SystemLanguages supplies the host's locale priority list. Defaults
	// to the platform lookup; tests inject a fixed list.
	SystemLanguages func() []string
}

// NewResolver loads the embedded locale tables and activates the language
// resolved from the given preference ("system" or a language tag).
func NewResolver(preference string) *Resolver {
	r := &Resolver{SystemLanguages: systemLanguages}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		r.bundle = bundle
		r.supported = []string{config.DefaultLanguage}
		r.SetLanguage(preference)
		return r
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		r.supported = append(r.supported, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	r.bundle = bundle
	r.SetLanguage(preference)
	return r
}

// Supported returns the language codes backed by embedded locale tables.
func (r *Resolver) Supported() []string {
	out := make([]string, len(r.supported))
	copy(out, r.supported)
	return out
}

// Active returns the currently resolved language code.
func (r *Resolver) Active() string {
	return r.active
}

// SetLanguage re-resolves the active language from a preference value and
// rebuilds the localizer.
func (r *Resolver) SetLanguage(preference string) {
	r.active = ResolveLanguage(preference, Options{
		Fallback:        config.DefaultLanguage,
		Supported:       r.supported,
		SystemLanguages: r.SystemLanguages(),
	})
	// The fallback locale is appended so missing keys chain through it
	// before falling back to the literal key.
	r.localizer = i18n.NewLocalizer(r.bundle, r.active, config.DefaultLanguage)
}

// T translates a key. A key missing from both the active and the fallback
// locale comes back verbatim; translation never fails rendering.
func (r *Resolver) T(key string) string {
	if r.localizer == nil {
		return key
	}
	msg, err := r.localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Tf translates a key and substitutes template data.
func (r *Resolver) Tf(key string, data map[string]any) string {
	if r.localizer == nil {
		return key
	}
	msg, err := r.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}

// systemLanguages asks the platform for its locale priority list.
// Failures degrade to an empty list and the resolver falls back.
func systemLanguages() []string {
	langs, err := locale.GetLocales()
	if err != nil {
		slog.Debug(config.MsgLocaleSkip,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return nil
	}
	return langs
}
