// Package interaction turns detected hands into the shared interaction state
// that drives the display.
package interaction

import "math"

// Scale bounds. The reducer and the smoother both clamp into this range.
const (
	MinScale = 0.5
	MaxScale = 3.0
)

// Vec2 is a pair of floats: a rotation (x = pitch, y = yaw) or a screen position.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the single record shared between the detection loop and the
// render loop. The detection flags are rebuilt on every frame; every other
// field keeps its last written value until a hand overwrites it.
type State struct {
	LeftHandDetected  bool `json:"leftHandDetected"`
	RightHandDetected bool `json:"rightHandDetected"`
	IsPinchingRight   bool `json:"isPinchingRight"`

	// IsPinchingLeft is part of the display contract but nothing sets it:
	// the left hand zooms continuously instead of through a pinch gate.
	IsPinchingLeft bool `json:"isPinchingLeft"`

	Rotation     Vec2    `json:"rotation"`
	Scale        float64 `json:"scale"`
	DragPosition Vec2    `json:"dragPosition"`
}

// NewState returns the session-start state: nothing detected, no rotation,
// unit scale, drag at the origin.
func NewState() State {
	return State{Scale: 1}
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
