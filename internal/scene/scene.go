package scene

import (
	"time"

	"github.com/ayusman/hologram/internal/interaction"
	"github.com/ayusman/hologram/internal/orbit"
)

// Body is a body's placement in a rendered frame.
type Body struct {
	Name    string  `json:"name"`
	Angle   float64 `json:"angle"`
	Spin    float64 `json:"spin"`
	Local   Vec3    `json:"local"`
	World   Vec3    `json:"world"`
	Focused bool    `json:"focused"`
}

// GroupView is the group transform as sent to display clients.
type GroupView struct {
	Pitch       float64 `json:"pitch"`
	Yaw         float64 `json:"yaw"`
	Scale       float64 `json:"scale"`
	Translation Vec3    `json:"translation"`
}

// Frame is everything the display needs for one render tick.
type Frame struct {
	Tick         uint64            `json:"tick"`
	Elapsed      float64           `json:"elapsed"`
	Interaction  interaction.State `json:"interaction"`
	Group        GroupView         `json:"group"`
	Bodies       []Body            `json:"bodies"`
	Focused      string            `json:"focused"`
	FocusChanged bool              `json:"focusChanged"`
}

// Scene owns the per-tick render state. The render loop is its only user.
type Scene struct {
	sim      *orbit.Simulator
	smoother *Smoother
	focused  string
}

// New creates a Scene over bodies. Until the first tick the focus is the
// first declared body.
func New(bodies []orbit.Body) *Scene {
	s := &Scene{
		sim:      orbit.NewSimulator(bodies),
		smoother: NewSmoother(),
	}
	if len(bodies) > 0 {
		s.focused = bodies[0].Name
	}
	return s
}

// Focused returns the body picked by the last tick.
func (s *Scene) Focused() string {
	return s.focused
}

// Bodies returns the simulated bodies in declaration order.
func (s *Scene) Bodies() []orbit.Body {
	return s.sim.Bodies()
}

// Tick smooths toward target, advances the orbits to elapsed and selects
// the frontmost body.
func (s *Scene) Tick(target interaction.State, elapsed time.Duration) Frame {
	s.smoother.Step(target)
	tf := s.smoother.Transform(elapsed)

	states := s.sim.Tick(elapsed)
	bodies := make([]Body, len(states))
	candidates := make([]Candidate, len(states))
	for i, st := range states {
		world := tf.Apply(st.Local)
		bodies[i] = Body{
			Name:  st.Name,
			Angle: st.Angle,
			Spin:  st.Spin,
			Local: toVec3(st.Local),
			World: toVec3(world),
		}
		candidates[i] = Candidate{Name: st.Name, Forward: world.Z}
	}

	changed := false
	if name, ok := SelectFocus(candidates); ok {
		changed = name != s.focused
		s.focused = name
		for i := range bodies {
			if bodies[i].Name == name {
				bodies[i].Focused = true
				break
			}
		}
	}

	return Frame{
		Tick:        s.sim.Ticks(),
		Elapsed:     elapsed.Seconds(),
		Interaction: target,
		Group: GroupView{
			Pitch:       tf.Pitch,
			Yaw:         tf.Yaw,
			Scale:       tf.Scale,
			Translation: toVec3(tf.Translation),
		},
		Bodies:       bodies,
		Focused:      s.focused,
		FocusChanged: changed,
	}
}
