// Package orbit moves the bodies of the display scene along circular orbits.
// The motion is decorative kinematics, not simulated dynamics.
package orbit

// Body is the static description of one orbiting body.
type Body struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"` // orbit radius, 0 for the center
	Size     float64 `json:"size"`
	Speed    float64 `json:"speed"` // relative angular speed

	// Display metadata, passed through untouched.
	Color       string `json:"color"`
	Description string `json:"description"`
	Temperature string `json:"temperature"`
	Gravity     string `json:"gravity"`
}

// DefaultBodies is the catalog a fresh installation starts with, in
// declaration order. Order matters: focus ties resolve to the earlier body.
func DefaultBodies() []Body {
	return []Body{
		{
			Name: "SOL", Distance: 0, Size: 2.5, Speed: 0,
			Color:       "#FFD700",
			Description: "G2V main-sequence star at the core of the system.",
			Temperature: "5778 K",
			Gravity:     "274 m/s²",
		},
		{
			Name: "MERCURY", Distance: 4, Size: 0.5, Speed: 0.8,
			Color:       "#A5A5A5",
			Description: "Closest to the sun, with extreme surface temperature swings.",
			Temperature: "440 K",
			Gravity:     "3.7 m/s²",
		},
		{
			Name: "VENUS", Distance: 6, Size: 0.9, Speed: 0.6,
			Color:       "#E3BB76",
			Description: "Thick atmosphere and a runaway greenhouse effect.",
			Temperature: "737 K",
			Gravity:     "8.87 m/s²",
		},
		{
			Name: "EARTH", Distance: 8, Size: 1, Speed: 0.4,
			Color:       "#22A6B3",
			Description: "The only world known to harbor life.",
			Temperature: "288 K",
			Gravity:     "9.8 m/s²",
		},
		{
			Name: "MARS", Distance: 11, Size: 0.7, Speed: 0.3,
			Color:       "#EB4D4B",
			Description: "The red planet, destination of the current mission.",
			Temperature: "210 K",
			Gravity:     "3.71 m/s²",
		},
	}
}
