// Package config defines the process configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the sqlite file holding the body catalog.
	DBPath string `koanf:"db_path"`

	// StaticDir serves the display client when set.
	StaticDir string `koanf:"static_dir"`

	CameraID     int `koanf:"camera_id"`
	CameraWidth  int `koanf:"camera_width"`
	CameraHeight int `koanf:"camera_height"`

	// Replay plays a recorded JSON-lines detection file instead of the camera,
	// ReplayFPS frames per second.
	Replay     string `koanf:"replay"`
	ReplayLoop bool   `koanf:"replay_loop"`
	ReplayFPS  int    `koanf:"replay_fps"`

	// RefreshHz is the render tick rate.
	RefreshHz int `koanf:"refresh_hz"`

	MaxHands               int     `koanf:"max_hands"`
	MinDetectionConfidence float64 `koanf:"min_detection_confidence"`
	MinPresenceConfidence  float64 `koanf:"min_presence_confidence"`
	MinTrackingConfidence  float64 `koanf:"min_tracking_confidence"`

	// ViewportWidth and ViewportHeight size the drag mapping until a display
	// client reports its own viewport.
	ViewportWidth  int `koanf:"viewport_width"`
	ViewportHeight int `koanf:"viewport_height"`

	// Tray shows the system tray menu.
	Tray bool `koanf:"tray"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		Addr:                   ":8080",
		LogLevel:               "info",
		DBPath:                 defaultDBPath(),
		CameraID:               0,
		CameraWidth:            1280,
		CameraHeight:           720,
		ReplayFPS:              30,
		RefreshHz:              60,
		MaxHands:               2,
		MinDetectionConfidence: 0.5,
		MinPresenceConfidence:  0.5,
		MinTrackingConfidence:  0.5,
		ViewportWidth:          1280,
		ViewportHeight:         720,
		Tray:                   false,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hologram.db"
	}
	return filepath.Join(home, ".hologram", "hologram.db")
}

// RefreshInterval is the time between render ticks.
func (c *Config) RefreshInterval() time.Duration {
	return time.Second / time.Duration(c.RefreshHz)
}

// ReplayInterval is the time between replayed detection frames.
func (c *Config) ReplayInterval() time.Duration {
	return time.Second / time.Duration(c.ReplayFPS)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.RefreshHz <= 0 || c.RefreshHz > 240:
		return fmt.Errorf("%w: refresh_hz must be in 1..240, got %d", ErrInvalidConfig, c.RefreshHz)
	case c.ReplayFPS <= 0 || c.ReplayFPS > 240:
		return fmt.Errorf("%w: replay_fps must be in 1..240, got %d", ErrInvalidConfig, c.ReplayFPS)
	case c.MaxHands < 1:
		return fmt.Errorf("%w: max_hands must be at least 1, got %d", ErrInvalidConfig, c.MaxHands)
	case c.CameraWidth <= 0 || c.CameraHeight <= 0:
		return fmt.Errorf("%w: camera resolution must be positive", ErrInvalidConfig)
	case c.ViewportWidth < 0 || c.ViewportHeight < 0:
		return fmt.Errorf("%w: viewport must not be negative", ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"min_detection_confidence": c.MinDetectionConfidence,
		"min_presence_confidence":  c.MinPresenceConfidence,
		"min_tracking_confidence":  c.MinTrackingConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %g", ErrInvalidConfig, name, v)
		}
	}
	return nil
}
