package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TargetApp != "Wirecast" {
		t.Fatalf("unexpected default target %q", cfg.TargetApp)
	}
	if cfg.PollPeriod() != 100*time.Millisecond {
		t.Fatalf("unexpected default poll period %v", cfg.PollPeriod())
	}
	if cfg.FocusDelay() != 5*time.Second {
		t.Fatalf("unexpected default focus delay %v", cfg.FocusDelay())
	}
	if cfg.AbsenceDelay() != time.Second {
		t.Fatalf("unexpected default absence delay %v", cfg.AbsenceDelay())
	}
	if len(cfg.MacroKeys) == 0 {
		t.Fatal("default macro keys must not be empty")
	}
}

func TestValidate_ClampsBadValues(t *testing.T) {
	cfg := &Config{
		TargetApp:          "  ",
		MacroKeys:          nil,
		PollPeriodMillis:   1,
		FocusDelayMillis:   -5,
		AbsenceDelayMillis: 0,
		HistorySize:        -1,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.TargetApp == "" || len(cfg.MacroKeys) == 0 {
		t.Fatalf("validate must restore target/keys, got %+v", cfg)
	}
	if cfg.PollPeriodMillis != 100 || cfg.FocusDelayMillis != 5000 || cfg.AbsenceDelayMillis != 1000 {
		t.Fatalf("validate must clamp timings, got %+v", cfg)
	}
	if cfg.HistorySize != 200 {
		t.Fatalf("validate must clamp history size, got %d", cfg.HistorySize)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetApp != "Wirecast" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camsentry.json")
	cfg := DefaultConfig()
	cfg.TargetApp = "OBS Studio"
	cfg.MacroKeys = []string{"ctrl", "shift", "2"}
	cfg.RegionLeft, cfg.RegionTop = 100, 50
	cfg.RegionWidth, cfg.RegionHeight = 640, 360
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.TargetApp != "OBS Studio" {
		t.Fatalf("target lost in round trip: %+v", loaded)
	}
	r := loaded.Region()
	if r.Left != 100 || r.Top != 50 || r.Width != 640 || r.Height != 360 {
		t.Fatalf("region lost in round trip: %+v", r)
	}
	if !r.Valid() {
		t.Fatal("round-tripped region must be valid")
	}
}

func TestLoad_BadJSONReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
