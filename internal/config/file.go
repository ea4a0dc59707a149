package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig selects and parameterizes the event-source backend.
type SourceConfig struct {
	// Kind is "http" (JSON raw-record API) or "ics" (ICS feeds/files).
	Kind string `yaml:"kind"`

	// BaseURL is the root of the JSON calendar API (kind "http").
	BaseURL string `yaml:"base_url,omitempty"`

	// Username/Password enable HTTP Basic Auth when non-empty.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// Feeds maps calendar IDs to ICS URLs or file paths (kind "ics").
	Feeds map[string]string `yaml:"feeds,omitempty"`
}

// File is the on-disk YAML configuration. Preference fields are pointers so
// that an absent key can be told apart from an explicit zero value; the
// preference store records an override bit only for keys the user actually
// wrote down.
type File struct {
	// Entities is an explicit calendar list. When set, backend discovery
	// is skipped entirely.
	Entities []string `yaml:"entities,omitempty"`

	// Colors maps calendar IDs to CSS color values.
	Colors map[string]string `yaml:"colors,omitempty"`

	// Hidden lists calendar IDs excluded from fetching and display.
	Hidden []string `yaml:"hidden,omitempty"`

	Language       *string `yaml:"language,omitempty"`
	Theme          *string `yaml:"theme,omitempty"`
	HighlightToday *bool   `yaml:"highlight_today,omitempty"`
	HighlightColor *string `yaml:"highlight_color,omitempty"`
	TrimHours      *bool   `yaml:"trim_unused_hours,omitempty"`

	Source SourceConfig `yaml:"source"`
}

// DefaultFile returns an in-memory default configuration.
func DefaultFile() *File {
	return &File{
		Source: SourceConfig{Kind: "http"},
	}
}

// Normalize fills in missing values so partially-filled configs behave.
func (f *File) Normalize() {
	switch f.Source.Kind {
	case "http", "ics":
	default:
		f.Source.Kind = "http"
	}
	if f.Colors == nil {
		f.Colors = map[string]string{}
	}
}

// LoadFile loads configuration from the given YAML path. A missing file is
// replaced by a freshly written default config with 0600 permissions.
func LoadFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New(ErrConfigPathReq)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultFile()
			if err := SaveFile(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// SaveFile writes the configuration atomically via a temp file + rename,
// ensuring 0600 permissions on the result.
func SaveFile(path string, cfg *File) error {
	if path == "" {
		return errors.New(ErrConfigPathReq)
	}
	if cfg == nil {
		return errors.New(ErrConfigNil)
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".weekgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, FilePermUserRW); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
