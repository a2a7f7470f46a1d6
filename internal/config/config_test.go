package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("first-run Load failed: %v", err)
	}
	if cfg.Listen == "" || cfg.LaneCap != 3 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	off := false
	in := Default()
	in.Listen = "127.0.0.1:9999"
	in.LaneCap = 5
	in.WeekendDisabled = &off
	in.Colors = map[string]string{"campaign": "#ff0000"}
	in.Sources = []SourceConfig{{URL: "https://example.com/a.ics", ID: "a"}}

	if err := Save(path, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if out.Listen != in.Listen || out.LaneCap != 5 {
		t.Errorf("roundtrip lost fields: %+v", out)
	}
	if out.WeekendDisabledValue() {
		t.Errorf("explicit weekend_disabled=false lost in roundtrip")
	}
	if out.ColorFor("campaign") != "#ff0000" {
		t.Errorf("color map lost: %q", out.ColorFor("campaign"))
	}
	if len(out.Sources) != 1 || out.Sources[0].ID != "a" {
		t.Errorf("sources lost: %+v", out.Sources)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	if cfg.Listen == "" || cfg.RefreshCron == "" || cfg.LaneCap != 3 {
		t.Errorf("Normalize left zero values: %+v", cfg)
	}
	if !cfg.WeekendDisabledValue() || !cfg.DisablePastDatesValue() {
		t.Errorf("unset policies must default to disabled weekends and past dates")
	}
}

func TestColorForFallsBack(t *testing.T) {
	cfg := Default()
	cfg.Colors = map[string]string{"email": "#123456"}

	if got := cfg.ColorFor("email"); got != "#123456" {
		t.Errorf("ColorFor(email) = %q", got)
	}
	if got := cfg.ColorFor("unknown"); got != cfg.DefaultColor {
		t.Errorf("ColorFor(unknown) = %q, want default color", got)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
