package perch

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the overlay window, camera, and output settings.
type Config struct {
	// Window
	Title       string `json:"title"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Transparent bool   `json:"transparent"`

	// Camera
	Fov            float64    `json:"fov"`
	Near           float64    `json:"near"`
	Far            float64    `json:"far"`
	CameraPosition [3]float64 `json:"camera_position"`

	// Output
	// MaxPixelRatio caps the device pixel ratio used for the output buffer.
	MaxPixelRatio float64 `json:"max_pixel_ratio"`
	ScreenshotDir string  `json:"screenshot_dir"`
	Debug         bool    `json:"debug"`
}

// DefaultConfig returns the settings of the reference page: a 75 degree
// camera at (0, 0.55, 0.75) looking down -z, pixel ratio capped at 2.
func DefaultConfig() Config {
	return Config{
		Title:          "perch",
		Width:          1280,
		Height:         720,
		Transparent:    true,
		Fov:            75,
		Near:           0.1,
		Far:            100,
		CameraPosition: [3]float64{0, 0.55, 0.75},
		MaxPixelRatio:  2,
		ScreenshotDir:  "screenshots",
	}
}

// LoadConfig reads a JSON config file. Fields missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot produce a usable camera or
// window.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("window size %dx%d: %w", c.Width, c.Height, ErrInvalidViewport)
	case c.Fov <= 0 || c.Fov >= 180:
		return fmt.Errorf("fov %v out of range (0, 180)", c.Fov)
	case c.Near <= 0 || c.Far <= c.Near:
		return fmt.Errorf("clip planes near=%v far=%v", c.Near, c.Far)
	case c.MaxPixelRatio <= 0:
		return fmt.Errorf("max pixel ratio %v must be positive", c.MaxPixelRatio)
	}
	return nil
}
