package interaction

import (
	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/gesture"
)

// Mapping gains from landmark space to control space.
const (
	PitchGain = 2.0  // knuckle y in [0,1] -> rotation.x in [-1,1]
	YawGain   = 4.0  // knuckle x in [0,1] -> rotation.y in [-2,2]
	ZoomGain  = 10.0 // thumb-index distance -> scale, before clamping
)

// Viewport is the display size in screen units, read when a drag is mapped.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewportFunc returns the current viewport.
type ViewportFunc func() Viewport

// FixedViewport returns a ViewportFunc that always reports w x h.
func FixedViewport(w, h float64) ViewportFunc {
	return func() Viewport { return Viewport{Width: w, Height: h} }
}

// Report summarizes what one frame contributed.
type Report struct {
	Left      bool // a valid left hand was applied
	Right     bool // a valid right hand was applied
	Malformed int  // hands dropped for carrying the wrong landmark count
	Unknown   int  // hands dropped for an unrecognized handedness
}

// Reducer folds one detection frame into a State.
type Reducer struct {
	viewport ViewportFunc
}

// NewReducer creates a Reducer that maps drags against viewport.
func NewReducer(viewport ViewportFunc) *Reducer {
	if viewport == nil {
		viewport = FixedViewport(0, 0)
	}
	return &Reducer{viewport: viewport}
}

// Apply updates s in place from the hands of one detection frame.
//
// Both detection flags are cleared first. A left hand steers rotation from
// its middle knuckle and scale from its thumb-index gap. A right hand sets the
// pinch flag and, only while pinching, moves the drag position to the
// mirrored index tip. Fields of an absent hand keep their previous values.
// Hands with the wrong landmark count or an unknown role are skipped.
func (r *Reducer) Apply(s *State, hands []detector.Hand) Report {
	var rep Report

	s.LeftHandDetected = false
	s.RightHandDetected = false

	for i := range hands {
		hand := &hands[i]
		if !hand.Valid() {
			rep.Malformed++
			continue
		}

		switch hand.Handedness {
		case detector.Left:
			r.applyLeft(s, hand)
			rep.Left = true
		case detector.Right:
			r.applyRight(s, hand)
			rep.Right = true
		default:
			rep.Unknown++
		}
	}

	return rep
}

func (r *Reducer) applyLeft(s *State, hand *detector.Hand) {
	s.LeftHandDetected = true

	knuckle := hand.Points[detector.MiddleMCP]
	s.Rotation.X = (knuckle.Y - 0.5) * PitchGain
	s.Rotation.Y = (knuckle.X - 0.5) * YawGain

	d := gesture.ThumbIndexDistance(hand)
	s.Scale = Clamp(d*ZoomGain, MinScale, MaxScale)
}

func (r *Reducer) applyRight(s *State, hand *detector.Hand) {
	s.RightHandDetected = true

	d := gesture.ThumbIndexDistance(hand)
	s.IsPinchingRight = d < gesture.PinchThreshold
	if !s.IsPinchingRight {
		return
	}

	tip := hand.Points[detector.IndexTip]
	vp := r.viewport()
	s.DragPosition = Vec2{
		X: (1 - tip.X) * vp.Width,
		Y: tip.Y * vp.Height,
	}
}
