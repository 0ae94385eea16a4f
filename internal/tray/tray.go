// Package tray provides the system tray menu: a detection toggle and a
// read-only view of the focused body and tracked hands.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Status is what the tray shows about the running session.
type Status struct {
	Focused       string
	Left          bool
	Right         bool
	PinchingRight bool
	FPS           int
}

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	status   Status
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuFocus  *systray.MenuItem
	menuLeft   *systray.MenuItem
	menuRight  *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback for the open-display menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Hologram")
	systray.SetTooltip("Hologram hand-steered display")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume hand detection")
	systray.AddSeparator()

	t.menuFocus = systray.AddMenuItem(focusTitle(t.status.Focused), "Body in front")
	t.menuFocus.Disable()
	t.menuLeft = systray.AddMenuItem(handTitle("Left", t.status.Left, false), "Left hand: rotation and zoom")
	t.menuLeft.Disable()
	t.menuRight = systray.AddMenuItem(handTitle("Right", t.status.Right, t.status.PinchingRight), "Right hand: pinch to drag")
	t.menuRight.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Display...", "Open the display in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Hologram")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func focusTitle(name string) string {
	if name == "" {
		return "Focus: none"
	}
	return "Focus: " + name
}

func handTitle(role string, detected, pinching bool) string {
	switch {
	case !detected:
		return fmt.Sprintf("%s hand: searching", role)
	case pinching:
		return fmt.Sprintf("%s hand: pinching", role)
	default:
		return fmt.Sprintf("%s hand: tracked", role)
	}
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the status lines. Titles are only rewritten when they
// change, so callers may push every render frame.
func (t *Tray) SetStatus(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.status
	t.status = s

	if t.menuFocus == nil {
		return
	}
	if s.Focused != prev.Focused {
		t.menuFocus.SetTitle(focusTitle(s.Focused))
	}
	if s.Left != prev.Left {
		t.menuLeft.SetTitle(handTitle("Left", s.Left, false))
	}
	if s.Right != prev.Right || s.PinchingRight != prev.PinchingRight {
		t.menuRight.SetTitle(handTitle("Right", s.Right, s.PinchingRight))
	}
	if s.FPS != prev.FPS {
		systray.SetTooltip(fmt.Sprintf("Hologram: %d fps", s.FPS))
	}
}

// Status returns the last status pushed with SetStatus.
func (t *Tray) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
