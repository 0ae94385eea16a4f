// Package scene prepares each render tick: it smooths the interaction state,
// places the orbiting bodies under the group transform and picks the focused body.
package scene

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// GroupTranslation offsets the whole body group to the left of the panel.
var GroupTranslation = r3.Vec{X: -2}

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
)

// Transform is the group transform applied to every body: uniform scale,
// then yaw about Y, then pitch about X (Euler XYZ), then translation.
type Transform struct {
	Pitch       float64
	Yaw         float64
	Scale       float64
	Translation r3.Vec
}

// Apply maps a body's local position into world space.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	v := r3.Scale(t.Scale, p)
	v = r3.NewRotation(t.Yaw, axisY).Rotate(v)
	v = r3.NewRotation(t.Pitch, axisX).Rotate(v)
	return r3.Add(v, t.Translation)
}

// Vec3 is r3.Vec with lower-case JSON keys for display clients.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toVec3(v r3.Vec) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
