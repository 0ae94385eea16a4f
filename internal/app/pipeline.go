package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/interaction"
)

const (
	// pausePoll is how often a disabled session checks whether it was re-enabled.
	pausePoll = 100 * time.Millisecond

	// errorBackoff keeps a failing source from spinning the detection loop.
	errorBackoff = 50 * time.Millisecond
)

// runDetection calls the source back-to-back. Detect blocks for as long as
// the source needs; only cancellation interrupts it.
func (a *App) runDetection(ctx context.Context) {
	defer a.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}
		if !a.IsEnabled() {
			if !sleep(ctx, pausePoll) {
				return
			}
			continue
		}

		start := time.Now()
		res, err := a.config.Source.Detect(ctx, start)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, detector.ErrSourceClosed) {
				a.log.Info("detection source finished", "reason", err)
				return
			}
			a.metrics.DetectionFailed()
			a.log.Warn("detection failed", "error", err)
			if !sleep(ctx, errorBackoff) {
				return
			}
			continue
		}

		a.applyDetection(res, time.Since(start))
	}
}

// applyDetection reduces one result into the shared state as a single write
// and refreshes the skeleton overlay.
func (a *App) applyDetection(res detector.Result, took time.Duration) interaction.Report {
	var rep interaction.Report
	a.cell.Update(func(s *interaction.State) {
		rep = a.reducer.Apply(s, res.Hands)
	})

	a.metrics.ObserveDetection(took, rep.Left, rep.Right, rep.Malformed, rep.Unknown)
	if rep.Malformed > 0 {
		a.log.Debug("dropped malformed hands", "count", rep.Malformed)
	}

	overlay := make([]detector.Hand, 0, len(res.Hands))
	for i := range res.Hands {
		if res.Hands[i].Valid() {
			overlay = append(overlay, res.Hands[i].Mirrored())
		}
	}

	a.mu.Lock()
	a.overlay = overlay
	a.mu.Unlock()

	return rep
}

func (a *App) runRender(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.renderTick(now)
		}
	}
}

// renderTick advances the scene to now and publishes the resulting frame.
func (a *App) renderTick(now time.Time) Frame {
	target := a.cell.Snapshot()

	a.mu.RLock()
	started := a.started
	a.mu.RUnlock()

	var elapsed time.Duration
	if !started.IsZero() && now.After(started) {
		elapsed = now.Sub(started)
	}

	sf := a.scene.Tick(target, elapsed)
	a.metrics.RenderTick(sf.FocusChanged)
	if sf.FocusChanged {
		a.log.Debug("focus changed", "body", sf.Focused)
	}

	if fps, ok := a.fps.tick(now); ok {
		a.metrics.SetFPS(fps)
		a.hud = target
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	frame := Frame{
		Frame:   sf,
		Session: a.id,
		Status:  status(target, a.failed),
		FPS:     a.fps.current,
		HUD:     a.hud,
		Overlay: Overlay{Hands: a.overlay, Connections: detector.Connections},
	}
	a.frame = frame

	for _, ch := range a.subs {
		select {
		case ch <- frame:
		default:
		}
	}
	return frame
}

func status(s interaction.State, failed bool) string {
	switch {
	case failed:
		return StatusUnavailable
	case s.LeftHandDetected || s.RightHandDetected:
		return StatusTracking
	default:
		return StatusSearching
	}
}

// sleep waits for d or until ctx is done. It reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
