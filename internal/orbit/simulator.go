package orbit

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// OrbitRate converts a body's speed into radians per second of elapsed time.
	OrbitRate = 0.2

	// SpinStep is the self-rotation added per render tick. It is counted in
	// ticks, not seconds, so spin speed follows the display refresh rate.
	SpinStep = 0.01
)

// Angle returns the orbital angle in radians after elapsed seconds.
func Angle(elapsed, speed float64) float64 {
	return elapsed * speed * OrbitRate
}

// Position returns the position on a circular orbit of radius distance in
// the XZ plane, before any group transform.
func Position(distance, angle float64) r3.Vec {
	return r3.Vec{
		X: distance * math.Cos(angle),
		Y: 0,
		Z: distance * math.Sin(angle),
	}
}

// BodyState is a body's derived placement at one tick.
type BodyState struct {
	Name  string
	Angle float64
	Local r3.Vec
	Spin  float64
}

// Simulator advances a fixed list of bodies. It is not safe for concurrent
// use; the render loop owns it.
type Simulator struct {
	bodies []Body
	spins  []float64
	ticks  uint64
}

// NewSimulator creates a Simulator over bodies, keeping their order.
func NewSimulator(bodies []Body) *Simulator {
	b := make([]Body, len(bodies))
	copy(b, bodies)
	return &Simulator{
		bodies: b,
		spins:  make([]float64, len(b)),
	}
}

// Bodies returns the simulated bodies in declaration order.
func (s *Simulator) Bodies() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Ticks returns how many times Tick has run.
func (s *Simulator) Ticks() uint64 {
	return s.ticks
}

// Tick places every body for the given elapsed session time and adds one
// SpinStep to each body's spin.
func (s *Simulator) Tick(elapsed time.Duration) []BodyState {
	t := elapsed.Seconds()
	s.ticks++

	states := make([]BodyState, len(s.bodies))
	for i, b := range s.bodies {
		s.spins[i] += SpinStep
		a := Angle(t, b.Speed)
		states[i] = BodyState{
			Name:  b.Name,
			Angle: a,
			Local: Position(b.Distance, a),
			Spin:  s.spins[i],
		}
	}
	return states
}
