package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Weekgrid/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Weekgrid"
	AppID          = "com.github.tartampluch.weekgrid"
	KeyringService = "com.github.tartampluch.weekgrid"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to the YAML configuration file"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Preference Keys (persisted via the key-value store)
// -----------------------------------------------------------------------------

const (
	PrefColors         = "calendar_colors"
	PrefHidden         = "hidden_calendars"
	PrefLanguage       = "language"
	PrefTheme          = "theme"
	PrefHighlightToday = "highlight_today"
	PrefHighlightColor = "highlight_color"
	PrefTrimHours      = "trim_unused_hours"
)

// SupportedLanguages lists the bundled UI languages (ISO 639-1). The i18n
// resolver derives the authoritative set from the embedded locale files;
// this list exists for settings UIs.
var SupportedLanguages = []string{"en", "fr", "de"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultLanguage       = "en"
	LanguageSystem        = "system"
	ThemeSystem           = "system"
	ThemeLight            = "light"
	ThemeDark             = "dark"
	DefaultHighlightColor = "#fff3cd"
	DefaultHighlight      = true
	DefaultTrimHours      = false

	// BoolTrue / BoolFalse are the persisted string forms of boolean
	// preferences in the key-value store.
	BoolTrue  = "true"
	BoolFalse = "false"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle        = "win_title"
	TKeyWeekOf          = "week_of"
	TKeyToday           = "today"
	TKeyAllDay          = "all_day"
	TKeyUntitledEvent   = "untitled_event"
	TKeyNoCalendars     = "no_calendars"
	TKeyNoCalendarsHint = "no_calendars_hint"
	TKeyNoEvents        = "no_events"
	TKeyDaySpan         = "day_span"
	TKeySettingsTitle   = "settings_title"
	TKeyLblLanguage     = "lbl_language"
	TKeyLblTheme        = "lbl_theme"
	TKeyThemeSystem     = "theme_system"
	TKeyThemeLight      = "theme_light"
	TKeyThemeDark       = "theme_dark"
	TKeyLblHighlight    = "lbl_highlight_today"
	TKeyLblTrimHours    = "lbl_trim_hours"
	TKeyLblHiddenCals   = "lbl_hidden_calendars"
	TKeyBtnClose        = "btn_close"
	TKeyBtnReset        = "btn_reset"
	TKeyNavHelp         = "nav_help"
	TKeyDayMon          = "day_mon"
	TKeyDayTue          = "day_tue"
	TKeyDayWed          = "day_wed"
	TKeyDayThu          = "day_thu"
	TKeyDayFri          = "day_fri"
	TKeyDaySat          = "day_sat"
	TKeyDaySun          = "day_sun"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	HeaderUserAgent     = "User-Agent"
	HeaderAccept        = "Accept"
	MimeJSON            = "application/json"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidURL    = "invalid URL structure"
	ErrProtocol      = "unsupported protocol scheme (http/https only)"
	ErrNoClient      = "internal error: source client is not initialized"
	ErrDecodeEvents  = "failed to decode event payload"
	ErrDecodeICS     = "failed to decode ICS stream"
	ErrListCalendars = "failed to list calendars"
	ErrLocalesAccess = "failed to access embedded locales"
	ErrLocaleLoad    = "failed to load locale file"
	ErrAppFailed     = "application failed unexpectedly"
	ErrConfigLoad    = "failed to load configuration file"
	ErrLogFile       = "failed to open log file"
	ErrCacheDir      = "could not determine user cache dir"
	ErrCreateDir     = "could not create app cache dir"
	ErrStoreWrite    = "failed to persist preference"
	ErrConfigPathReq = "config path is empty"
	ErrConfigNil     = "config is nil"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgBadPersisted  = "Ignoring malformed persisted value"
	MsgTransMissing  = "Missing translation key"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgCalRemoved    = "Calendar appears to have been removed"
	MsgFetchFailed   = "Event fetch failed"
	MsgFetchRestart  = "Calendar list changed, restarting fetch cycle"
	MsgWeekFetched   = "Week events fetched"
	MsgStoreReadFail = "Keyring read failed"
	MsgDiscoverStart = "Discovering calendars"
	MsgDiscoverFail  = "Calendar discovery failed"
	MsgSnapshotUsed  = "Using live-state snapshot for discovery"
	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgCtxCancel     = "Context cancelled, shutting down UI"
	MsgWeekChanged   = "Week offset changed"
	MsgPrefChanged   = "Preference updated"
	MsgPrefsReset    = "Preferences reset to defaults"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyValue     = "value"
	LogKeyCalendar  = "calendar"
	LogKeyCount     = "count"
	LogKeyOffset    = "week_offset"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain   = "main"
	CompI18n   = "i18n"
	CompPrefs  = "prefs"
	CompStore  = "store"
	CompSource = "source"
	CompApp    = "app"
	CompUI     = "ui"
)
