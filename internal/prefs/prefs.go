// Package prefs merges three sources of truth into effective display
// preferences: explicit values from the configuration file, values persisted
// in the key-value store, and built-in defaults. Keys the user wrote into
// the configuration file win for the whole session; everything else follows
// the persisted value when one exists.
package prefs

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/tartampluch/weekgrid/internal/color"
	"github.com/tartampluch/weekgrid/internal/config"
	"github.com/tartampluch/weekgrid/internal/store"
)

// Preferences is the merged, effective preference state for one session.
type Preferences struct {
	Colors         map[string]string
	Hidden         map[string]bool
	Language       string
	Theme          string
	HighlightToday bool
	HighlightColor string
	TrimHours      bool

	// Entities is the explicit calendar list from the configuration
	// file. It is never persisted and never merged.
	Entities []string
}

// Manager owns the effective preferences and their persistence. All methods
// are safe for concurrent use.
type Manager struct {
	store store.Store
	log   *slog.Logger

	mu sync.RWMutex

	// overridden records, per preference key, whether the configuration
	// file explicitly supplied that key. The set is fixed at ApplyConfig
	// time and never changed by mutators.
	overridden map[string]bool

	// base holds the configuration-derived colors and hidden set captured
	// at ApplyConfig time. ResetAll restores these two, not the built-in
	// defaults.
	baseColors map[string]string
	baseHidden map[string]bool

	effective Preferences
}

// NewManager returns a Manager backed by the given store, with built-in
// defaults as its effective state until ApplyConfig is called.
func NewManager(s store.Store) *Manager {
	m := &Manager{
		store: s,
		log:   slog.With(config.LogKeyComponent, config.CompPrefs),
	}
	m.ApplyConfig(config.DefaultFile())
	return m
}

// ApplyConfig rebuilds the effective preferences from the configuration
// file. The file's values are deep-copied, so later mutation of the Manager
// never aliases caller-owned data. For each key explicitly present in the
// file an override is recorded; overridden keys ignore persisted values for
// the rest of the session.
func (m *Manager) ApplyConfig(cfg *config.File) {
	if cfg == nil {
		cfg = config.DefaultFile()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.overridden = map[string]bool{
		config.PrefColors:         len(cfg.Colors) > 0,
		config.PrefHidden:         len(cfg.Hidden) > 0,
		config.PrefLanguage:       cfg.Language != nil,
		config.PrefTheme:          cfg.Theme != nil,
		config.PrefHighlightToday: cfg.HighlightToday != nil,
		config.PrefHighlightColor: cfg.HighlightColor != nil,
		config.PrefTrimHours:      cfg.TrimHours != nil,
	}

	m.baseColors = copyColors(cfg.Colors)
	m.baseHidden = hiddenSet(cfg.Hidden)

	// Colors merge per calendar: persisted assignments survive, but any
	// entry written in the configuration file wins.
	colors := map[string]string{}
	if persisted, ok := m.persistedColors(); ok {
		colors = persisted
	}
	for id, c := range m.baseColors {
		colors[id] = c
	}

	hidden := hiddenSet(cfg.Hidden)
	if !m.overridden[config.PrefHidden] {
		if persisted, ok := m.persistedHidden(); ok {
			hidden = persisted
		}
	}

	m.effective = Preferences{
		Colors:         colors,
		Hidden:         hidden,
		Language:       m.resolveString(config.PrefLanguage, cfg.Language, config.LanguageSystem),
		Theme:          m.resolveString(config.PrefTheme, cfg.Theme, config.ThemeSystem),
		HighlightToday: m.resolveBool(config.PrefHighlightToday, cfg.HighlightToday, config.DefaultHighlight),
		HighlightColor: m.resolveString(config.PrefHighlightColor, cfg.HighlightColor, config.DefaultHighlightColor),
		TrimHours:      m.resolveBool(config.PrefTrimHours, cfg.TrimHours, config.DefaultTrimHours),
		Entities:       append([]string(nil), cfg.Entities...),
	}
}

// Snapshot returns a deep copy of the effective preferences.
func (m *Manager) Snapshot() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.effective
	out.Colors = copyColors(m.effective.Colors)
	out.Hidden = copyHidden(m.effective.Hidden)
	out.Entities = append([]string(nil), m.effective.Entities...)
	return out
}

// Overridden reports whether the configuration file explicitly supplied the
// given preference key. Settings UIs use this to lock controls.
func (m *Manager) Overridden(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overridden[key]
}

// SetColor assigns a color to a calendar and persists the color map.
func (m *Manager) SetColor(calendarID, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.effective.Colors == nil {
		m.effective.Colors = map[string]string{}
	}
	m.effective.Colors[calendarID] = value
	return m.persistColors()
}

// SetHidden toggles a calendar's visibility and persists the hidden set.
func (m *Manager) SetHidden(calendarID string, hidden bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.effective.Hidden == nil {
		m.effective.Hidden = map[string]bool{}
	}
	if hidden {
		m.effective.Hidden[calendarID] = true
	} else {
		delete(m.effective.Hidden, calendarID)
	}
	return m.persistHidden()
}

// SetLanguage persists the language preference ("system" or a code).
func (m *Manager) SetLanguage(lang string) error {
	return m.setString(config.PrefLanguage, lang, func(p *Preferences) { p.Language = lang })
}

// SetTheme persists the theme preference.
func (m *Manager) SetTheme(theme string) error {
	return m.setString(config.PrefTheme, theme, func(p *Preferences) { p.Theme = theme })
}

// SetHighlightToday persists the today-highlight toggle.
func (m *Manager) SetHighlightToday(on bool) error {
	return m.setString(config.PrefHighlightToday, boolString(on), func(p *Preferences) { p.HighlightToday = on })
}

// SetHighlightColor persists the today-highlight color.
func (m *Manager) SetHighlightColor(value string) error {
	return m.setString(config.PrefHighlightColor, value, func(p *Preferences) { p.HighlightColor = value })
}

// SetTrimHours persists the trim-unused-hours toggle.
func (m *Manager) SetTrimHours(on bool) error {
	return m.setString(config.PrefTrimHours, boolString(on), func(p *Preferences) { p.TrimHours = on })
}

// ResetAll clears every persisted preference. Colors and the hidden set
// revert to the values captured from the configuration file at the last
// ApplyConfig call; the scalar preferences revert to built-in defaults.
func (m *Manager) ResetAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, key := range []string{
		config.PrefColors,
		config.PrefHidden,
		config.PrefLanguage,
		config.PrefTheme,
		config.PrefHighlightToday,
		config.PrefHighlightColor,
		config.PrefTrimHours,
	} {
		if err := m.store.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}

	entities := m.effective.Entities
	m.effective = Preferences{
		Colors:         copyColors(m.baseColors),
		Hidden:         copyHidden(m.baseHidden),
		Language:       config.LanguageSystem,
		Theme:          config.ThemeSystem,
		HighlightToday: config.DefaultHighlight,
		HighlightColor: config.DefaultHighlightColor,
		TrimHours:      config.DefaultTrimHours,
		Entities:       entities,
	}

	m.log.Info(config.MsgPrefsReset)
	return errors.Join(errs...)
}

// EnsureColors assigns palette colors to calendars that have none yet,
// keyed by the calendar's position in the given list. Existing assignments
// are never overwritten. Newly assigned colors are persisted at once.
func (m *Manager) EnsureColors(calendarIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.effective.Colors == nil {
		m.effective.Colors = map[string]string{}
	}
	assigned := false
	for i, id := range calendarIDs {
		if m.effective.Colors[id] != "" {
			continue
		}
		m.effective.Colors[id] = color.PaletteColor(i)
		assigned = true
	}
	if !assigned {
		return nil
	}
	return m.persistColors()
}

func (m *Manager) setString(key, value string, apply func(*Preferences)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	apply(&m.effective)
	m.log.Debug(config.MsgPrefChanged, config.LogKeyKey, key, config.LogKeyValue, value)
	if err := m.store.Set(key, value); err != nil {
		m.log.Warn(config.ErrStoreWrite, config.LogKeyKey, key, config.LogKeyError, err)
		return err
	}
	return nil
}

// resolveString applies the merge precedence for one string preference:
// explicit config value, then persisted value, then the default.
func (m *Manager) resolveString(key string, explicit *string, def string) string {
	if explicit != nil {
		return *explicit
	}
	if v, ok := m.persisted(key); ok {
		return v
	}
	return def
}

func (m *Manager) resolveBool(key string, explicit *bool, def bool) bool {
	if explicit != nil {
		return *explicit
	}
	v, ok := m.persisted(key)
	if !ok {
		return def
	}
	switch v {
	case config.BoolTrue:
		return true
	case config.BoolFalse:
		return false
	default:
		m.log.Warn(config.MsgBadPersisted, config.LogKeyKey, key, config.LogKeyValue, v)
		return def
	}
}

func (m *Manager) persisted(key string) (string, bool) {
	v, err := m.store.Get(key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn(config.MsgBadPersisted, config.LogKeyKey, key, config.LogKeyError, err)
		}
		return "", false
	}
	return v, true
}

func (m *Manager) persistedColors() (map[string]string, bool) {
	raw, ok := m.persisted(config.PrefColors)
	if !ok {
		return nil, false
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		m.log.Warn(config.MsgBadPersisted, config.LogKeyKey, config.PrefColors, config.LogKeyError, err)
		return nil, false
	}
	return out, true
}

func (m *Manager) persistedHidden() (map[string]bool, bool) {
	raw, ok := m.persisted(config.PrefHidden)
	if !ok {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		m.log.Warn(config.MsgBadPersisted, config.LogKeyKey, config.PrefHidden, config.LogKeyError, err)
		return nil, false
	}
	return hiddenSet(list), true
}

func (m *Manager) persistColors() error {
	data, err := json.Marshal(m.effective.Colors)
	if err != nil {
		return err
	}
	if err := m.store.Set(config.PrefColors, string(data)); err != nil {
		m.log.Warn(config.ErrStoreWrite, config.LogKeyKey, config.PrefColors, config.LogKeyError, err)
		return err
	}
	return nil
}

func (m *Manager) persistHidden() error {
	list := make([]string, 0, len(m.effective.Hidden))
	for id := range m.effective.Hidden {
		list = append(list, id)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if err := m.store.Set(config.PrefHidden, string(data)); err != nil {
		m.log.Warn(config.ErrStoreWrite, config.LogKeyKey, config.PrefHidden, config.LogKeyError, err)
		return err
	}
	return nil
}

func boolString(v bool) string {
	if v {
		return config.BoolTrue
	}
	return config.BoolFalse
}

func copyColors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyHidden(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func hiddenSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
