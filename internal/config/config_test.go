package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Controller != "pid" {
		t.Errorf("expected controller pid, got %s", cfg.Controller)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Speed.Scale != 0.9 {
		t.Errorf("expected scale 0.9, got %f", cfg.Speed.Scale)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.yaml")
	doc := "controller: fuzzy\ncontroller_path: steer.yaml\ncars: 3\nspeed:\n  scale: 8.1\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Controller != "fuzzy" || cfg.ControllerPath != "steer.yaml" || cfg.Cars != 3 {
		t.Errorf("unexpected overlay: %+v", cfg)
	}
	if cfg.Speed.Scale != 8.1 {
		t.Errorf("expected scale 8.1, got %f", cfg.Speed.Scale)
	}
	if cfg.Laps != DefaultLaps || cfg.Gains.K1 != 0.025 {
		t.Error("expected unset fields to keep defaults")
	}
	if cfg.Track.Name != DefaultTrack {
		t.Errorf("expected default track, got %q", cfg.Track.Name)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.yaml")
	cfg := GetPreset("rectangle")
	cfg.Laps = 4
	cfg.CAN.Iface = "vcan0"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Laps != 4 || got.CAN.Iface != "vcan0" || got.Track.Name != "rectangle" {
		t.Errorf("unexpected config after round trip: %+v", got)
	}
	if len(got.Track.Route) != len(cfg.Track.Route) {
		t.Errorf("expected %d route nodes, got %d", len(cfg.Track.Route), len(got.Track.Route))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no cars", func(c *Config) { c.Cars = 0 }, "cars"},
		{"zero dt", func(c *Config) { c.Dt = 0 }, "dt"},
		{"bad scale", func(c *Config) { c.Speed.Scale = -1 }, "speed.scale"},
		{"no controller", func(c *Config) { c.Controller = "" }, "controller"},
		{"broken track", func(c *Config) { c.Track.Route = [][]int{{9, 9}} }, "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		tr, err := cfg.Track.Build()
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if tr.Route().NumNodes() < 4 {
			t.Errorf("preset %s: expected a closed route, got %d nodes", name, tr.Route().NumNodes())
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != 3 {
		t.Fatalf("expected 3 presets, got %v", presets)
	}
	if presets[0] != "chicane" || presets[2] != "rectangle" {
		t.Errorf("expected sorted names, got %v", presets)
	}
}

func TestLoad_TrackReplacesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.yaml")
	doc := `
track:
  name: strip
  tiles:
    - "s s s"
  route: [[0, 0], [2, 0]]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Track.Hints) != 0 {
		t.Errorf("expected default hints to be dropped, got %v", cfg.Track.Hints)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config: %v", err)
	}
}
