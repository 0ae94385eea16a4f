package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/interaction"
	"github.com/ayusman/hologram/internal/logging"
	"github.com/ayusman/hologram/internal/metrics"
	"github.com/ayusman/hologram/internal/orbit"
)

func newTestApp(src detector.Source) *App {
	return New(Config{
		Source:          src,
		RefreshInterval: 5 * time.Millisecond,
		Viewport:        interaction.Viewport{Width: 1000, Height: 800},
		Metrics:         metrics.New(),
		Logger:          logging.Discard(),
	})
}

func TestNew_Defaults(t *testing.T) {
	a := newTestApp(detector.NewMockSource())

	assert.NotEmpty(t, a.ID())
	assert.True(t, a.IsEnabled())
	assert.Equal(t, interaction.NewState(), a.State())
	assert.Equal(t, "SOL", a.Focused())
	assert.Len(t, a.Bodies(), 5)

	f := a.Frame()
	assert.Equal(t, StatusSearching, f.Status)
	assert.Equal(t, a.ID(), f.Session)
	assert.Len(t, f.Overlay.Connections, 23)
}

func TestApp_ApplyDetection(t *testing.T) {
	a := newTestApp(detector.NewMockSource())

	rep := a.applyDetection(detector.Result{Hands: []detector.Hand{
		detector.PinchHand(detector.Right, 0.3, 0.25),
		{Points: make([]detector.Point3D, 5), Handedness: detector.Left},
	}}, time.Millisecond)

	assert.True(t, rep.Right)
	assert.Equal(t, 1, rep.Malformed)

	s := a.State()
	assert.True(t, s.RightHandDetected)
	assert.False(t, s.LeftHandDetected)
	assert.InDelta(t, 700, s.DragPosition.X, 1e-6)
	assert.InDelta(t, 200, s.DragPosition.Y, 1e-6)

	frame := a.renderTick(time.Now())
	require.Len(t, frame.Overlay.Hands, 1, "malformed hands are left out of the overlay")
	assert.InDelta(t, 0.7, frame.Overlay.Hands[0].Points[detector.IndexTip].X, 1e-9)
	assert.Equal(t, StatusTracking, frame.Status)
}

func TestApp_ViewportUsedForDrag(t *testing.T) {
	a := newTestApp(detector.NewMockSource())
	a.SetViewport(interaction.Viewport{Width: 2000, Height: 1000})
	a.SetViewport(interaction.Viewport{Width: -1, Height: 5})

	a.applyDetection(detector.Result{Hands: []detector.Hand{
		detector.PinchHand(detector.Right, 0.5, 0.5),
	}}, 0)

	assert.Equal(t, interaction.Viewport{Width: 2000, Height: 1000}, a.Viewport())
	assert.InDelta(t, 1000, a.State().DragPosition.X, 1e-6)
	assert.InDelta(t, 500, a.State().DragPosition.Y, 1e-6)
}

func TestApp_RenderTick(t *testing.T) {
	t.Run("publishes to subscribers", func(t *testing.T) {
		a := newTestApp(detector.NewMockSource())
		frames, cancel := a.Subscribe()
		defer cancel()

		a.renderTick(time.Now())

		select {
		case f := <-frames:
			assert.Equal(t, uint64(1), f.Tick)
			assert.Len(t, f.Bodies, 5)
		default:
			t.Fatal("expected a frame on the subscription")
		}
		assert.Equal(t, uint64(1), a.Frame().Tick)
	})

	t.Run("slow subscriber does not block", func(t *testing.T) {
		a := newTestApp(detector.NewMockSource())
		_, cancel := a.Subscribe()
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			now := time.Now()
			for i := 0; i < 50; i++ {
				a.renderTick(now.Add(time.Duration(i) * time.Millisecond))
			}
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("render blocked on a subscriber that never reads")
		}
		assert.Equal(t, uint64(50), a.Frame().Tick)
	})

	t.Run("cancelled subscription is closed", func(t *testing.T) {
		a := newTestApp(detector.NewMockSource())
		frames, cancel := a.Subscribe()
		cancel()
		cancel()

		a.renderTick(time.Now())

		_, open := <-frames
		assert.False(t, open)
	})
}

func TestApp_HUDSyncsOncePerSecond(t *testing.T) {
	a := newTestApp(detector.NewMockSource())
	t0 := time.Now()

	a.renderTick(t0)
	a.applyDetection(detector.Result{Hands: []detector.Hand{
		detector.KnuckleAt(detector.Left, 1, 0.5, 0.2),
	}}, 0)

	f := a.renderTick(t0.Add(500 * time.Millisecond))
	assert.False(t, f.HUD.LeftHandDetected, "HUD must not refresh mid-second")
	assert.True(t, f.Interaction.LeftHandDetected)
	assert.Equal(t, 0, f.FPS)

	f = a.renderTick(t0.Add(time.Second))
	assert.True(t, f.HUD.LeftHandDetected)
	assert.InDelta(t, 2.0, f.HUD.Scale, 1e-9)
	assert.Equal(t, 3, f.FPS)
}

func TestFPSMeter(t *testing.T) {
	var m fpsMeter
	t0 := time.Now()
	step := time.Second / 60

	published := 0
	for i := 0; i <= 200; i++ {
		if fps, ok := m.tick(t0.Add(time.Duration(i) * step)); ok {
			published++
			assert.InDelta(t, 61, fps, 1.5)
		}
	}
	assert.Equal(t, 3, published)
}

func TestApp_StartStop(t *testing.T) {
	src := detector.NewMockSource()
	src.Push(detector.KnuckleAt(detector.Left, 0.75, 0.5, 0.2))
	a := newTestApp(src)
	frames, _ := a.Subscribe()

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Start(context.Background()), "second Start is a no-op")

	require.Eventually(t, func() bool {
		return a.State().LeftHandDetected
	}, 2*time.Second, 5*time.Millisecond)
	assert.InDelta(t, 1.0, a.State().Rotation.Y, 1e-9)

	require.Eventually(t, func() bool {
		return a.Frame().Tick > 0
	}, 2*time.Second, 5*time.Millisecond)

	a.Stop()
	a.Stop()

	assert.True(t, src.Closed())
	for range frames {
		// drain until Stop closes the subscription
	}
}

func TestApp_DetectErrorLeavesStateUntouched(t *testing.T) {
	src := detector.NewMockSource()
	src.Push(detector.KnuckleAt(detector.Left, 0.75, 0.5, 0.2))
	src.PushError(errors.New("model hiccup"))
	src.PushError(errors.New("model hiccup"))
	src.Push(detector.PinchHand(detector.Right, 0.3, 0.25))
	a := newTestApp(src)

	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	require.Eventually(t, func() bool {
		return a.State().RightHandDetected
	}, 2*time.Second, 5*time.Millisecond, "loop must continue past errors")

	s := a.State()
	assert.InDelta(t, 1.0, s.Rotation.Y, 1e-9, "left-driven fields carried across the failed frames")
	assert.InDelta(t, 2.0, s.Scale, 1e-9)
	assert.GreaterOrEqual(t, src.Calls(), 4)
}

func TestApp_StartFailure(t *testing.T) {
	src := detector.NewMockSource()
	denied := errors.New("camera permission denied")
	src.SetOpenError(denied)
	a := newTestApp(src)

	err := a.Start(context.Background())

	require.ErrorIs(t, err, denied)
	assert.Equal(t, StatusUnavailable, a.Frame().Status)
	assert.Equal(t, interaction.NewState(), a.State())
	assert.Equal(t, 0, src.Calls())
	assert.NotPanics(t, a.Stop)
}

func TestApp_DisabledSkipsDetection(t *testing.T) {
	src := detector.NewMockSource()
	src.Push(detector.OpenHand(detector.Left))
	a := newTestApp(src)
	a.SetEnabled(false)

	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, src.Calls())
	assert.False(t, a.State().LeftHandDetected)

	a.SetEnabled(true)
	require.Eventually(t, func() bool {
		return a.State().LeftHandDetected
	}, 2*time.Second, 5*time.Millisecond)
}

func TestApp_StopInterruptsBlockedDetect(t *testing.T) {
	src := detector.NewMockSource()
	src.SetDelay(time.Hour)
	a := newTestApp(src)

	require.NoError(t, a.Start(context.Background()))

	stopped := make(chan struct{})
	go func() {
		a.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not interrupt a blocked Detect")
	}
}

func TestApp_CustomBodies(t *testing.T) {
	a := New(Config{
		Source: detector.NewMockSource(),
		Bodies: []orbit.Body{{Name: "ONLY", Distance: 1, Speed: 1}},
		Logger: logging.Discard(),
	})

	assert.Equal(t, "ONLY", a.Focused())
	f := a.renderTick(time.Now())
	assert.Equal(t, "ONLY", f.Focused)
}
