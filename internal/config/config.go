package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes a single ICS subscription whose events are
// highlighted on the calendar (holidays, on-call rotations, ...).
type FeedConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for cache keys and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the preview server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// PickerConfig carries the mode flags of the date picker.
type PickerConfig struct {
	// Range enables two-boundary range selection.
	Range bool `yaml:"range" json:"range"`
	// AutoRange, when > 0, previews a fixed-length range from the hovered day.
	AutoRange int `yaml:"auto_range" json:"auto_range"`
	// WeekPicker selects whole weeks.
	WeekPicker bool `yaml:"week_picker" json:"week_picker"`
	// MultiCalendars is the number of side-by-side calendar pages (0 = off).
	MultiCalendars int `yaml:"multi_calendars" json:"multi_calendars"`
	// HideOffsetDates suppresses days borrowed from adjacent months.
	HideOffsetDates bool `yaml:"hide_offset_dates" json:"hide_offset_dates"`
	// ModelAuto lets a single click start range collection.
	ModelAuto bool `yaml:"model_auto" json:"model_auto"`
	// NoToday suppresses the "today" marker.
	NoToday bool `yaml:"no_today" json:"no_today"`
	// Disabled turns the whole picker read-only.
	Disabled bool `yaml:"disabled" json:"disabled"`
	// CellClassName is added to every visible cell when non-empty.
	CellClassName string `yaml:"cell_class_name" json:"cell_class_name"`
}

// HighlightConfig is the declarative highlight rule set.
type HighlightConfig struct {
	// Dates are YYYY-MM-DD days to highlight.
	Dates []string `yaml:"dates" json:"dates"`
	// WeekDays are 0 (Sunday) .. 6 (Saturday).
	WeekDays []int `yaml:"week_days" json:"week_days"`
	// RRules are RFC 5545 recurrence rules, e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25".
	RRules []string `yaml:"rrules" json:"rrules"`
	// Feeds are ICS subscriptions whose event days are highlighted.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`
	// HighlightDisabled keeps highlighting on disabled days.
	HighlightDisabled bool `yaml:"highlight_disabled" json:"highlight_disabled"`
	// Refresh is a cron schedule for re-fetching Feeds.
	Refresh string `yaml:"refresh" json:"refresh"`
	// HorizonDays bounds recurrence and feed expansion around today.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`
}

// DisabledConfig lists days that cannot be picked.
type DisabledConfig struct {
	MinDate  string   `yaml:"min_date" json:"min_date"`
	MaxDate  string   `yaml:"max_date" json:"max_date"`
	Dates    []string `yaml:"dates" json:"dates"`
	WeekDays []int    `yaml:"week_days" json:"week_days"`
	RRules   []string `yaml:"rrules" json:"rrules"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the preview server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone "today" is computed in (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Picker    PickerConfig    `yaml:"picker" json:"picker"`
	Highlight HighlightConfig `yaml:"highlight" json:"highlight"`
	Disabled  DisabledConfig  `yaml:"disabled" json:"disabled"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8080",
		Timezone:  "Asia/Seoul",
		WeekStart: "monday",
		LogLevel:  "info",
		Picker: PickerConfig{
			Range: true,
		},
		Highlight: HighlightConfig{
			Dates:       []string{},
			WeekDays:    []int{0, 6},
			RRules:      []string{},
			Feeds:       []FeedConfig{},
			Refresh:     "0 */6 * * *",
			HorizonDays: 366,
		},
		Disabled: DisabledConfig{
			Dates:    []string{},
			WeekDays: []int{},
			RRules:   []string{},
		},
	}
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		// Unknown value; fall back to monday to avoid surprising layouts.
		c.WeekStart = "monday"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Picker.AutoRange < 0 {
		c.Picker.AutoRange = 0
	}
	if c.Picker.MultiCalendars < 0 {
		c.Picker.MultiCalendars = 0
	}

	c.Highlight.WeekDays = validWeekDays(c.Highlight.WeekDays)
	c.Disabled.WeekDays = validWeekDays(c.Disabled.WeekDays)
	if c.Highlight.Dates == nil {
		c.Highlight.Dates = []string{}
	}
	if c.Highlight.RRules == nil {
		c.Highlight.RRules = []string{}
	}
	if c.Highlight.Feeds == nil {
		c.Highlight.Feeds = []FeedConfig{}
	}
	if c.Highlight.Refresh == "" {
		c.Highlight.Refresh = "0 */6 * * *"
	}
	if c.Highlight.HorizonDays <= 0 {
		c.Highlight.HorizonDays = 366
	}
	if c.Disabled.Dates == nil {
		c.Disabled.Dates = []string{}
	}
	if c.Disabled.RRules == nil {
		c.Disabled.RRules = []string{}
	}
}

// validWeekDays drops values outside 0..6 and never returns nil.
func validWeekDays(in []int) []int {
	out := make([]int, 0, len(in))
	for _, d := range in {
		if d >= 0 && d <= 6 {
			out = append(out, d)
		}
	}
	return out
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating the parent directory) and returned.
//   - Otherwise the YAML is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
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

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
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

	tmp, err := os.CreateTemp(dir, ".dpcal-config-*.tmp")
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

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
