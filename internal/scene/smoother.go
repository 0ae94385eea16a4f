package scene

import (
	"time"

	"github.com/ayusman/hologram/internal/interaction"
)

const (
	// Damping is the fraction of the remaining gap closed on every tick.
	Damping = 0.1

	// YawDrift is the autonomous turn of the scene, in radians per second.
	YawDrift = 0.05

	// PitchFactor scales the smoothed vertical rotation before it tilts the group.
	PitchFactor = 0.5
)

// Smoother exponentially damps rotation and scale toward the interaction
// state. The factor is per tick, so convergence speed follows the refresh rate.
type Smoother struct {
	Rotation interaction.Vec2
	Scale    float64
}

// NewSmoother starts at rest: no rotation, unit scale.
func NewSmoother() *Smoother {
	return &Smoother{Scale: 1}
}

// Step moves the smoothed values one tick toward target.
func (s *Smoother) Step(target interaction.State) {
	s.Rotation.X += (target.Rotation.X - s.Rotation.X) * Damping
	s.Rotation.Y += (target.Rotation.Y - s.Rotation.Y) * Damping

	scale := interaction.Clamp(target.Scale, interaction.MinScale, interaction.MaxScale)
	s.Scale += (scale - s.Scale) * Damping
}

// EffectiveYaw adds the autonomous drift to the smoothed horizontal rotation.
func (s *Smoother) EffectiveYaw(elapsed time.Duration) float64 {
	return s.Rotation.Y + elapsed.Seconds()*YawDrift
}

// Transform returns the group transform for the current smoothed values.
func (s *Smoother) Transform(elapsed time.Duration) Transform {
	return Transform{
		Pitch:       s.Rotation.X * PitchFactor,
		Yaw:         s.EffectiveYaw(elapsed),
		Scale:       s.Scale,
		Translation: GroupTranslation,
	}
}
