// Package app runs a hologram session: it feeds detection results into the
// shared interaction state and turns that state into render frames.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/interaction"
	"github.com/ayusman/hologram/internal/metrics"
	"github.com/ayusman/hologram/internal/orbit"
	"github.com/ayusman/hologram/internal/scene"
)

// DefaultRefreshInterval is one render tick at 60 Hz.
const DefaultRefreshInterval = time.Second / 60

// Session status values shown by display clients.
const (
	StatusSearching   = "searching"
	StatusTracking    = "tracking"
	StatusUnavailable = "unavailable"
)

// Config holds configuration options for the application.
type Config struct {
	Source          detector.Source
	Bodies          []orbit.Body
	RefreshInterval time.Duration
	Viewport        interaction.Viewport
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// Overlay is the hand skeleton drawn over the preview: the latest valid
// hands mirrored to match the selfie view, and the bones joining landmarks.
type Overlay struct {
	Hands       []detector.Hand `json:"hands"`
	Connections [][2]int        `json:"connections"`
}

// Frame is a render frame as published to display clients.
type Frame struct {
	scene.Frame
	Session string            `json:"session"`
	Status  string            `json:"status"`
	FPS     int               `json:"fps"`
	HUD     interaction.State `json:"hud"`
	Overlay Overlay           `json:"overlay"`
}

// App is one hologram session.
type App struct {
	id      string
	config  Config
	log     *slog.Logger
	metrics *metrics.Metrics

	cell    *interaction.Cell
	reducer *interaction.Reducer

	// Owned by the render loop.
	scene *scene.Scene
	fps   fpsMeter
	hud   interaction.State

	// lifecycle serialises Start and Stop.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu       sync.RWMutex
	enabled  bool
	viewport interaction.Viewport
	frame    Frame
	overlay  []detector.Hand
	failed   bool
	subs     map[int]chan Frame
	nextSub  int
	started  time.Time
}

// New creates an App. Detection is enabled until SetEnabled(false).
func New(config Config) *App {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Bodies == nil {
		config.Bodies = orbit.DefaultBodies()
	}

	a := &App{
		id:       uuid.NewString(),
		config:   config,
		metrics:  config.Metrics,
		cell:     interaction.NewCell(),
		scene:    scene.New(config.Bodies),
		hud:      interaction.NewState(),
		enabled:  true,
		viewport: config.Viewport,
		subs:     make(map[int]chan Frame),
	}
	a.log = config.Logger.With("session", a.id)
	a.reducer = interaction.NewReducer(a.Viewport)
	a.frame = Frame{
		Frame: scene.Frame{
			Interaction: interaction.NewState(),
			Focused:     a.scene.Focused(),
		},
		Session: a.id,
		Status:  StatusSearching,
		HUD:     interaction.NewState(),
		Overlay: Overlay{Connections: detector.Connections},
	}
	return a
}

// ID returns the session id.
func (a *App) ID() string {
	return a.id
}

// Start opens the detection source and starts the detection and render
// loops. A source that fails to open is reported once and the session stays
// in its default state; Start does not retry.
func (a *App) Start(ctx context.Context) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.config.Source.Open(ctx); err != nil {
		a.log.Error("detection source failed to open; display stays idle", "error", err)
		a.mu.Lock()
		a.failed = true
		a.frame.Status = StatusUnavailable
		a.mu.Unlock()
		return fmt.Errorf("open detection source: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.mu.Lock()
	a.failed = false
	a.started = time.Now()
	a.mu.Unlock()

	a.wg.Add(2)
	go a.runDetection(ctx)
	go a.runRender(ctx)

	a.log.Info("session started", "refresh", a.config.RefreshInterval, "bodies", len(a.config.Bodies))
	return nil
}

// Stop halts both loops, waits for them and closes the source.
func (a *App) Stop() {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.cancel == nil {
		return
	}
	a.cancel()
	a.wg.Wait()
	a.cancel = nil

	if err := a.config.Source.Close(); err != nil {
		a.log.Warn("error closing detection source", "error", err)
	}

	a.mu.Lock()
	for id, ch := range a.subs {
		close(ch)
		delete(a.subs, id)
	}
	a.mu.Unlock()

	a.log.Info("session stopped")
}

// SetEnabled pauses or resumes detection. A paused session keeps its state.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether detection is running.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetViewport records the display size used for drag mapping. Negative
// sizes are ignored.
func (a *App) SetViewport(vp interaction.Viewport) {
	if vp.Width < 0 || vp.Height < 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.viewport = vp
}

// Viewport returns the current display size.
func (a *App) Viewport() interaction.Viewport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.viewport
}

// State returns a snapshot of the interaction state.
func (a *App) State() interaction.State {
	return a.cell.Snapshot()
}

// Frame returns the latest render frame.
func (a *App) Frame() Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame
}

// Focused returns the body picked by the latest render tick.
func (a *App) Focused() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame.Focused
}

// Bodies returns the bodies in the scene in declaration order.
func (a *App) Bodies() []orbit.Body {
	return a.scene.Bodies()
}

// Subscribe returns a channel receiving every render frame and a function
// that ends the subscription. Frames are dropped when the receiver lags.
func (a *App) Subscribe() (<-chan Frame, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan Frame, 4)
	a.subs[id] = ch

	return ch, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if c, ok := a.subs[id]; ok {
			close(c)
			delete(a.subs, id)
		}
	}
}
