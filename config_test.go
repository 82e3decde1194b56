package perch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.CameraPosition != [3]float64{0, 0.55, 0.75} || cfg.Fov != 75 {
		t.Errorf("camera = %v fov %v", cfg.CameraPosition, cfg.Fov)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perch.json")
	if err := os.WriteFile(path, []byte(`{"width": 800, "debug": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 800 || !cfg.Debug {
		t.Errorf("cfg = %+v, want width 800 and debug", cfg)
	}
	if cfg.Height != DefaultConfig().Height || cfg.MaxPixelRatio != 2 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "none.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"width": `), 0o644)
	if _, err := LoadConfig(bad); err == nil {
		t.Error("malformed file: no error")
	}

	zero := filepath.Join(dir, "zero.json")
	os.WriteFile(zero, []byte(`{"width": 0}`), 0o644)
	if _, err := LoadConfig(zero); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("zero width: err = %v, want ErrInvalidViewport", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"fov", func(c *Config) { c.Fov = 180 }},
		{"near", func(c *Config) { c.Near = 0 }},
		{"far", func(c *Config) { c.Far = c.Near }},
		{"ratio", func(c *Config) { c.MaxPixelRatio = 0 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(&cfg)
		if cfg.Validate() == nil {
			t.Errorf("%s: Validate accepted %+v", tt.name, cfg)
		}
	}
}
