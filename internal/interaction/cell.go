package interaction

import "sync"

// Cell holds the one State of a session. The detection loop is the only
// writer; readers get copies, so a reader never sees half of a frame.
type Cell struct {
	mu    sync.RWMutex
	state State
}

// NewCell creates a Cell holding NewState().
func NewCell() *Cell {
	return &Cell{state: NewState()}
}

// Update runs fn against the state under the write lock.
func (c *Cell) Update(fn func(s *State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
}

// Snapshot returns a copy of the current state.
func (c *Cell) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
