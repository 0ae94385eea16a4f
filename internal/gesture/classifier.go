// Package gesture classifies single-hand poses from landmark geometry.
// Everything here is a pure function of its inputs.
package gesture

import (
	"math"

	"github.com/ayusman/hologram/internal/detector"
)

// PinchThreshold is the thumb-to-index distance, in normalized image units,
// below which the right hand counts as pinching.
const PinchThreshold = 0.05

// Distance is the planar Euclidean distance between two landmarks.
// Depth (z) is ignored.
func Distance(a, b detector.Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// IsPinch reports whether a and b are strictly closer than threshold.
func IsPinch(a, b detector.Point3D, threshold float64) bool {
	return Distance(a, b) < threshold
}

// ThumbIndexDistance measures the gap between the thumb tip and the index tip.
// The caller must pass a hand that passed detector.Hand.Valid.
func ThumbIndexDistance(hand *detector.Hand) float64 {
	return Distance(hand.Points[detector.ThumbTip], hand.Points[detector.IndexTip])
}
