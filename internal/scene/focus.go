package scene

// Candidate is a body's forward-axis (world z) coordinate at one tick.
type Candidate struct {
	Name    string
	Forward float64
}

// SelectFocus returns the candidate furthest forward. Ties go to the earlier
// candidate. There is no hysteresis: near-equal bodies can swap every tick.
func SelectFocus(candidates []Candidate) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Forward > candidates[best].Forward {
			best = i
		}
	}
	return candidates[best].Name, true
}
