package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/camsentry/camsentry/domain/monitor"
)

// Config holds runtime configuration for a monitoring session. Fields may be
// loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Monitored screen region
	RegionTop    int `json:"region_top"`
	RegionLeft   int `json:"region_left"`
	RegionWidth  int `json:"region_width"`
	RegionHeight int `json:"region_height"`

	// Application whose foreground focus gates active monitoring
	TargetApp string `json:"target_app"`

	// Recovery key combination
	MacroKeys []string `json:"macro_keys"`

	// Timing (milliseconds)
	PollPeriodMillis   int `json:"poll_period_ms"`
	FocusDelayMillis   int `json:"focus_delay_ms"`
	AbsenceDelayMillis int `json:"absence_delay_ms"`

	// Person-detection inference service
	DetectorURL string `json:"detector_url"`

	// Event sinks
	HistorySize int    `json:"history_size"`
	EventDBPath string `json:"event_db_path"`

	// Preview bounds
	PreviewMaxWidth  int `json:"preview_max_width"`
	PreviewMaxHeight int `json:"preview_max_height"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		TargetApp:          "Wirecast",
		MacroKeys:          []string{"5"},
		PollPeriodMillis:   100,
		FocusDelayMillis:   5000,
		AbsenceDelayMillis: 1000,
		DetectorURL:        "http://127.0.0.1:8500",
		HistorySize:        200,
		EventDBPath:        "camsentry_events.db",
		PreviewMaxWidth:    800,
		PreviewMaxHeight:   600,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TargetApp) == "" {
		c.TargetApp = "Wirecast"
	}
	if len(c.MacroKeys) == 0 {
		c.MacroKeys = []string{"5"}
	}
	if c.PollPeriodMillis < 10 {
		c.PollPeriodMillis = 100
	}
	if c.FocusDelayMillis <= 0 {
		c.FocusDelayMillis = 5000
	}
	if c.AbsenceDelayMillis <= 0 {
		c.AbsenceDelayMillis = 1000
	}
	if strings.TrimSpace(c.DetectorURL) == "" {
		c.DetectorURL = "http://127.0.0.1:8500"
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 200
	}
	if c.PreviewMaxWidth <= 0 {
		c.PreviewMaxWidth = 800
	}
	if c.PreviewMaxHeight <= 0 {
		c.PreviewMaxHeight = 600
	}
	return nil
}

// Region returns the configured monitoring region.
func (c *Config) Region() monitor.Region {
	return monitor.Region{
		Top:    c.RegionTop,
		Left:   c.RegionLeft,
		Width:  c.RegionWidth,
		Height: c.RegionHeight,
	}
}

// SetRegion stores r for persistence across runs.
func (c *Config) SetRegion(r monitor.Region) {
	c.RegionTop, c.RegionLeft = r.Top, r.Left
	c.RegionWidth, c.RegionHeight = r.Width, r.Height
}

func (c *Config) PollPeriod() time.Duration {
	return time.Duration(c.PollPeriodMillis) * time.Millisecond
}

func (c *Config) FocusDelay() time.Duration {
	return time.Duration(c.FocusDelayMillis) * time.Millisecond
}

func (c *Config) AbsenceDelay() time.Duration {
	return time.Duration(c.AbsenceDelayMillis) * time.Millisecond
}

// Load attempts to read configuration from the given JSON file path. If the
// file does not exist it returns DefaultConfig(). On JSON error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
