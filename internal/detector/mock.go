package detector

import (
	"context"
	"sync"
	"time"
)

// MockSource is a scripted Source. Each Detect call consumes the next queued
// step; once the script runs out it keeps returning the last step's hands.
type MockSource struct {
	mu      sync.Mutex
	steps   []mockStep
	last    []Hand
	openErr error
	delay   time.Duration
	calls   int
	opened  bool
	closed  bool
}

type mockStep struct {
	hands []Hand
	err   error
}

// NewMockSource creates an empty MockSource that reports no hands.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Push queues a frame with the given hands.
func (m *MockSource) Push(hands ...Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{hands: hands})
}

// PushError queues a failed detection.
func (m *MockSource) PushError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{err: err})
}

// SetOpenError makes Open fail with err.
func (m *MockSource) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// SetDelay makes every Detect call block for d, or until ctx is done.
func (m *MockSource) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many times Detect has been called.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Opened reports whether Open has succeeded since the last Close.
func (m *MockSource) Opened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened && !m.closed
}

// Closed reports whether Close has been called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Open implements Source.
func (m *MockSource) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return m.openErr
	}
	m.opened = true
	m.closed = false
	return nil
}

// Detect implements Source.
func (m *MockSource) Detect(ctx context.Context, ts time.Time) (Result, error) {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return Result{}, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.closed {
		return Result{}, ErrSourceClosed
	}

	if len(m.steps) > 0 {
		step := m.steps[0]
		m.steps = m.steps[1:]
		if step.err != nil {
			return Result{}, step.err
		}
		m.last = step.hands
	}
	return Result{Timestamp: ts, Hands: m.last}, nil
}

// Close implements Source.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// OpenHand returns a well-formed hand with the thumb and index tips spread
// 0.15 apart and the middle knuckle at the image center.
func OpenHand(h Handedness) Hand {
	hand := Hand{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: h,
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	hand.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	hand.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.03}
	hand.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.62, Z: 0.03}
	hand.Points[ThumbTip] = Point3D{X: 0.65, Y: 0.35, Z: 0.03}

	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.55, Z: 0.0}
	hand.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.48, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.40, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.50, Y: 0.35, Z: 0.0}

	hand.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.50, Z: 0.0}
	hand.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.42, Z: 0.0}
	hand.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.35, Z: 0.0}
	hand.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	hand.Points[RingMCP] = Point3D{X: 0.45, Y: 0.55, Z: 0.0}
	hand.Points[RingPIP] = Point3D{X: 0.43, Y: 0.47, Z: 0.0}
	hand.Points[RingDIP] = Point3D{X: 0.42, Y: 0.40, Z: 0.0}
	hand.Points[RingTip] = Point3D{X: 0.42, Y: 0.34, Z: 0.0}

	hand.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.60, Z: 0.0}
	hand.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.54, Z: 0.0}
	hand.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.48, Z: 0.0}
	hand.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.43, Z: 0.0}

	return hand
}

// PinchHand returns an OpenHand whose thumb tip touches the index tip at (x, y).
func PinchHand(h Handedness, x, y float64) Hand {
	hand := OpenHand(h)
	hand.Points[IndexTip] = Point3D{X: x, Y: y}
	hand.Points[ThumbTip] = Point3D{X: x + 0.01, Y: y}
	return hand
}

// KnuckleAt returns an OpenHand with the middle knuckle moved to (x, y) and
// the thumb and index tips spread by spread.
func KnuckleAt(h Handedness, x, y, spread float64) Hand {
	hand := OpenHand(h)
	hand.Points[MiddleMCP] = Point3D{X: x, Y: y}
	hand.Points[IndexTip] = Point3D{X: 0.5, Y: 0.4}
	hand.Points[ThumbTip] = Point3D{X: 0.5 + spread, Y: 0.4}
	return hand
}
