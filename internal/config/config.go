package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes a single ICS activity feed.
type SourceConfig struct {
	// URL is the ICS endpoint.
	URL string `yaml:"url" json:"url"`
	// ID identifies the source in logs and synthesized activity IDs.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Category overrides the category key for every activity from this
	// source; when empty the event's own CATEGORIES value is used.
	Category string `yaml:"category" json:"category"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone activities are displayed in (e.g.
	// "Europe/Berlin"). Empty means the process-local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron schedules periodic source refresh (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// WeekendDisabled makes weekend cells inert for selection. Unset
	// means true.
	WeekendDisabled *bool `yaml:"weekend_disabled" json:"weekend_disabled"`

	// DisablePastDates makes days before today inert and pins backward
	// month navigation to the current month. Unset means true.
	DisablePastDates *bool `yaml:"disable_past_dates" json:"disable_past_dates"`

	// LaneCap is the number of activity bars rendered per day before the
	// "+N more" overflow marker.
	LaneCap int `yaml:"lane_cap" json:"lane_cap"`

	// Colors maps category keys to display colors (hex). Categories not
	// listed fall back to DefaultColor.
	Colors map[string]string `yaml:"colors" json:"colors"`

	// DefaultColor is used for activities with no category match.
	DefaultColor string `yaml:"default_color" json:"default_color"`

	// Sources is the list of subscribed ICS activity feeds.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// BasicAuth, if non-nil with both fields set, protects every endpoint
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		LogLevel:     "info",
		RefreshCron:  "*/15 * * * *",
		LaneCap:      3,
		DefaultColor: "#64748b",
		Colors:       map[string]string{},
		Sources:      []SourceConfig{},
	}
}

// Normalize fills missing or out-of-range values with defaults so that
// partially-filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.LaneCap <= 0 {
		c.LaneCap = 3
	}
	if c.DefaultColor == "" {
		c.DefaultColor = "#64748b"
	}
	if c.Colors == nil {
		c.Colors = map[string]string{}
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
}

// WeekendDisabledValue resolves the weekend policy, defaulting to true.
func (c *Config) WeekendDisabledValue() bool {
	return c.WeekendDisabled == nil || *c.WeekendDisabled
}

// DisablePastDatesValue resolves the past-date policy, defaulting to true.
func (c *Config) DisablePastDatesValue() bool {
	return c.DisablePastDates == nil || *c.DisablePastDates
}

// ColorFor resolves the display color for a category key.
func (c *Config) ColorFor(category string) string {
	if col, ok := c.Colors[category]; ok && col != "" {
		return col
	}
	return c.DefaultColor
}

// Load reads the YAML config at path. A missing file is a first run: the
// default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".lanecal-config-*.tmp")
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
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
