package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/ayusman/hologram/internal/config"
)

var configEnvVars = []string{
	"HOLOGRAM_CONFIG",
	"HOLOGRAM_ADDR",
	"HOLOGRAM_REFRESH_HZ",
	"HOLOGRAM_CAMERA_ID",
	"HOLOGRAM_MAX_HANDS",
	"HOLOGRAM_MIN_DETECTION_CONFIDENCE",
	"HOLOGRAM_TRAY",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hologram.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then the defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RefreshHz, convey.ShouldEqual, 60)
				convey.So(cfg.CameraWidth, convey.ShouldEqual, 1280)
				convey.So(cfg.CameraHeight, convey.ShouldEqual, 720)
				convey.So(cfg.MaxHands, convey.ShouldEqual, 2)
				convey.So(cfg.MinDetectionConfidence, convey.ShouldEqual, 0.5)
				convey.So(cfg.ReplayFPS, convey.ShouldEqual, 30)
				convey.So(cfg.Tray, convey.ShouldBeFalse)
				convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Second/60)
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("HOLOGRAM_ADDR", ":9000")
			_ = os.Setenv("HOLOGRAM_REFRESH_HZ", "30")
			_ = os.Setenv("HOLOGRAM_CAMERA_ID", "2")
			_ = os.Setenv("HOLOGRAM_TRAY", "true")

			cfg, err := config.Load("")

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.RefreshHz, convey.ShouldEqual, 30)
				convey.So(cfg.CameraID, convey.ShouldEqual, 2)
				convey.So(cfg.Tray, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a YAML file is given", func() {
			path := writeConfigFile(t, `
addr: ":7070"
refresh_hz: 120
max_hands: 1
viewport_width: 1920
viewport_height: 1080
`)

			cfg, err := config.Load(path)

			convey.Convey("Then its values are loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.RefreshHz, convey.ShouldEqual, 120)
				convey.So(cfg.MaxHands, convey.ShouldEqual, 1)
				convey.So(cfg.ViewportWidth, convey.ShouldEqual, 1920)
				convey.So(cfg.ViewportHeight, convey.ShouldEqual, 1080)
			})

			convey.Convey("And env still wins over the file", func() {
				_ = os.Setenv("HOLOGRAM_ADDR", ":6060")

				cfg, err := config.Load(path)

				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.RefreshHz, convey.ShouldEqual, 120)
			})
		})

		convey.Convey("When HOLOGRAM_CONFIG names the file", func() {
			path := writeConfigFile(t, "refresh_hz: 24\n")
			_ = os.Setenv("HOLOGRAM_CONFIG", path)

			cfg, err := config.Load("")

			convey.Convey("Then it is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RefreshHz, convey.ShouldEqual, 24)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("HOLOGRAM_MIN_DETECTION_CONFIDENCE", "1.5")

			_, err := config.Load("")

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		valid  bool
	}{
		{"defaults", func(*config.Config) {}, true},
		{"empty addr", func(c *config.Config) { c.Addr = "" }, false},
		{"empty db path", func(c *config.Config) { c.DBPath = "" }, false},
		{"zero refresh", func(c *config.Config) { c.RefreshHz = 0 }, false},
		{"refresh too high", func(c *config.Config) { c.RefreshHz = 1000 }, false},
		{"zero replay fps", func(c *config.Config) { c.ReplayFPS = 0 }, false},
		{"no hands", func(c *config.Config) { c.MaxHands = 0 }, false},
		{"negative confidence", func(c *config.Config) { c.MinTrackingConfidence = -0.1 }, false},
		{"zero camera width", func(c *config.Config) { c.CameraWidth = 0 }, false},
		{"negative viewport", func(c *config.Config) { c.ViewportHeight = -1 }, false},
		{"zero viewport waits for a client", func(c *config.Config) { c.ViewportWidth, c.ViewportHeight = 0, 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestReplayInterval(t *testing.T) {
	cfg := config.New()
	if got := cfg.ReplayInterval(); got != time.Second/30 {
		t.Errorf("default replay interval = %v, want %v", got, time.Second/30)
	}
	cfg.ReplayFPS = 10
	if got := cfg.ReplayInterval(); got != 100*time.Millisecond {
		t.Errorf("replay interval at 10 fps = %v, want 100ms", got)
	}
}
