package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ayusman/hologram/internal/app"
	"github.com/ayusman/hologram/internal/capture"
	"github.com/ayusman/hologram/internal/config"
	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/detector/mediapipe"
	"github.com/ayusman/hologram/internal/interaction"
	"github.com/ayusman/hologram/internal/logging"
	"github.com/ayusman/hologram/internal/metrics"
	"github.com/ayusman/hologram/internal/server"
	"github.com/ayusman/hologram/internal/tray"
)

var errNoReplay = errors.New("replay file has no frames")

// serveFlags override the loaded config when set on the command line.
type serveFlags struct {
	addr   string
	replay string
	tray   bool

	trayChanged bool
}

func newServeCmd(configPath *string) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run hand detection and serve the display",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.trayChanged = cmd.Flags().Changed("tray")
			return runServe(cmd.Context(), *configPath, flags)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides addr)")
	cmd.Flags().StringVar(&flags.replay, "replay", "", "replay a recorded detection file instead of the camera")
	cmd.Flags().BoolVar(&flags.tray, "tray", false, "show the system tray menu")
	return cmd
}

func (f serveFlags) apply(cfg *config.Config) {
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.replay != "" {
		cfg.Replay = f.replay
	}
	if f.trayChanged {
		cfg.Tray = f.tray
	}
}

func runServe(ctx context.Context, configPath string, flags serveFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags.apply(cfg)

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.Named("main")

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	bodies, err := st.Bodies().Orbits()
	if err != nil {
		return fmt.Errorf("load bodies: %w", err)
	}
	if len(bodies) == 0 {
		log.Warn("body catalog is empty; nothing will orbit")
	}

	m := metrics.New()

	src, preview, err := openSource(cfg, logger)
	if err != nil {
		return err
	}

	session := app.New(app.Config{
		Source:          src,
		Bodies:          bodies,
		RefreshInterval: cfg.RefreshInterval(),
		Viewport:        interaction.Viewport{Width: float64(cfg.ViewportWidth), Height: float64(cfg.ViewportHeight)},
		Metrics:         m,
		Logger:          logger.Named("app"),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The display keeps serving the default scene when detection cannot start.
	if err := session.Start(ctx); err != nil {
		log.Error("hand detection unavailable", "error", err)
	}
	defer session.Stop()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Info("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Session:   session,
		Preview:   preview,
		Metrics:   m,
		Levels:    logger,
		Logger:    logger.Named("server"),
	})

	log.Info("starting server", "addr", cfg.Addr, "session", session.ID())

	if !cfg.Tray {
		return srv.ListenAndServe(ctx, cfg.Addr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Addr)
		cancel()
	}()

	runTray(ctx, cancel, session, displayURL(cfg.Addr))
	cancel()
	return <-errCh
}

// openSource picks the detection source: a replay file when configured,
// otherwise the camera. A camera source is also returned as the preview.
func openSource(cfg *config.Config, logger *logging.Logger) (detector.Source, server.FrameSource, error) {
	if cfg.Replay != "" {
		f, err := os.Open(cfg.Replay)
		if err != nil {
			return nil, nil, fmt.Errorf("open replay: %w", err)
		}
		defer f.Close()

		src, err := detector.NewReplaySource(f, cfg.ReplayLoop)
		if err != nil {
			return nil, nil, err
		}
		if src.Len() == 0 {
			return nil, nil, fmt.Errorf("%s: %w", cfg.Replay, errNoReplay)
		}
		src.SetInterval(cfg.ReplayInterval())
		logger.Named("main").Info("replaying detections",
			"file", cfg.Replay, "frames", src.Len(), "fps", cfg.ReplayFPS, "loop", cfg.ReplayLoop)
		return src, nil, nil
	}

	cam := capture.NewCamera(capture.Config{
		DeviceID: cfg.CameraID,
		Width:    cfg.CameraWidth,
		Height:   cfg.CameraHeight,
	})

	var det mediapipe.Detector
	mp, err := mediapipe.NewService(mediapipe.Config{
		MaxHands:         cfg.MaxHands,
		MinDetectionConf: cfg.MinDetectionConfidence,
		MinPresenceConf:  cfg.MinPresenceConfidence,
		MinTrackingConf:  cfg.MinTrackingConfidence,
	}, logger.Named("detector"))
	if err != nil {
		logger.Named("main").Warn("MediaPipe not available, hands will never be detected", "error", err)
		det = mediapipe.NewMockDetector()
	} else {
		det = mp
	}

	src := mediapipe.NewCameraSource(cam, det)
	return src, src, nil
}

// runTray shows the tray menu until the user quits or ctx ends. It blocks.
func runTray(ctx context.Context, cancel context.CancelFunc, session *app.App, url string) {
	t := tray.New()
	t.OnToggle(session.SetEnabled)
	t.OnOpen(func() { openBrowser(url) })
	t.OnQuit(cancel)

	frames, unsubscribe := session.Subscribe()
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case f, ok := <-frames:
				if !ok {
					return
				}
				t.SetStatus(tray.Status{
					Focused:       f.Focused,
					Left:          f.HUD.LeftHandDetected,
					Right:         f.HUD.RightHandDetected,
					PinchingRight: f.HUD.IsPinchingRight,
					FPS:           f.FPS,
				})
			}
		}
	}()

	t.Run()
}

func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("open browser", "url", url, "error", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.hologram/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".hologram", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
