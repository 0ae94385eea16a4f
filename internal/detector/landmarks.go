// Package detector provides the hand detection contract consumed by the
// interaction pipeline, plus the replay and scripted sources. The camera and
// MediaPipe adapters live in the mediapipe subpackage.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark in normalized image space: x and y in [0,1],
// z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Handedness is the hand role reported by the detector, from the camera's
// point of view. Display mirroring never changes it.
type Handedness int

const (
	Unknown Handedness = iota
	Left
	Right
)

// ParseHandedness resolves a detector label by exact match.
// Anything other than "Left" or "Right" is Unknown.
func ParseHandedness(label string) Handedness {
	switch label {
	case "Left":
		return Left
	case "Right":
		return Right
	default:
		return Unknown
	}
}

func (h Handedness) String() string {
	switch h {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the label the detector would have reported.
func (h Handedness) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText resolves a detector label; unrecognized labels become Unknown.
func (h *Handedness) UnmarshalText(text []byte) error {
	*h = ParseHandedness(string(text))
	return nil
}

// Hand is a single detected hand. A well-formed hand has exactly
// NumLandmarks points; Points is a slice so that a short or oversized
// detection survives ingestion and can be rejected by Valid.
type Hand struct {
	Points     []Point3D  `json:"points"`
	Handedness Handedness `json:"handedness"`
	Score      float64    `json:"score"`
}

// Valid reports whether the hand carries exactly NumLandmarks points, all
// with finite coordinates.
func (h *Hand) Valid() bool {
	if h == nil || len(h.Points) != NumLandmarks {
		return false
	}
	for _, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Mirrored returns a copy with x flipped (x -> 1-x) for drawing over a
// mirrored camera preview. Handedness is left untouched.
func (h Hand) Mirrored() Hand {
	out := Hand{
		Points:     make([]Point3D, len(h.Points)),
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		out.Points[i] = Point3D{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}
	return out
}

// Connections lists the bones of the hand skeleton as landmark index pairs.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{Wrist, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{Wrist, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, RingMCP}, {RingMCP, PinkyMCP},
}
