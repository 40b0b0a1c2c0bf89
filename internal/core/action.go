package core

// Action is a discrete action index submitted to a simulation.
// Indices are small non-negative integers; their meaning is defined per simulation.
type Action int

// ActionNoop is the default action submitted when no key was pressed.
// Index 0 is a no-op by convention; cartpole has none and pushes left.
const ActionNoop Action = 0

// ActionSpace describes the discrete actions a simulation accepts.
type ActionSpace struct {
	N        int      // Number of actions, valid indices are [0, N)
	Meanings []string // Optional human-readable name per index
}

// Contains reports whether a is a valid index in this space.
func (s ActionSpace) Contains(a Action) bool {
	return a >= 0 && int(a) < s.N
}

// Meaning returns the name of action a, or "UNKNOWN".
func (s ActionSpace) Meaning(a Action) string {
	if a < 0 || int(a) >= len(s.Meanings) {
		return "UNKNOWN"
	}
	return s.Meanings[a]
}
