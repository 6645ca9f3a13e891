package automaton

// State represents a state in a deterministic finite automaton.
type State uint32

// DeadState is the sink state from which no accepting state is reachable.
const DeadState State = 0

// Automaton is a byte-driven DFA. Term expansion in the corpus runs each
// candidate term through an Automaton and keeps the accepted ones.
//
// Properties:
//   - Deterministic: single transition per (state, input)
//   - Finite: bounded state count
//   - No ε-transitions
type Automaton interface {
	// Start returns the initial state.
	Start() State

	// Step returns the next state for the given input byte.
	// Returns DeadState if no transition exists.
	Step(state State, b byte) State

	// IsAccept returns true if the state is an accepting state.
	IsAccept(state State) bool

	// CanMatch returns true if any accepting state is reachable from this state.
	CanMatch(state State) bool
}

// Run feeds input through a byte by byte and reports whether it ends in an
// accepting state. It gives up as soon as no accepting state is reachable.
func Run(a Automaton, input []byte) bool {
	state := a.Start()
	for _, b := range input {
		state = a.Step(state, b)
		if state == DeadState || !a.CanMatch(state) {
			return false
		}
	}
	return a.IsAccept(state)
}
