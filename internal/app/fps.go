package app

import "time"

// fpsMeter counts render ticks per wall-clock second.
type fpsMeter struct {
	windowStart time.Time
	frames      int
	current     int
}

// tick counts one frame. When a full second has passed since the window
// opened it publishes the count, starts a new window and returns true.
func (m *fpsMeter) tick(now time.Time) (int, bool) {
	if m.windowStart.IsZero() {
		m.windowStart = now
	}
	m.frames++
	if now.Sub(m.windowStart) < time.Second {
		return m.current, false
	}
	m.current = m.frames
	m.frames = 0
	m.windowStart = now
	return m.current, true
}
