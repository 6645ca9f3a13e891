package automaton

// SubstringAutomaton accepts every input that contains a pattern as a
// contiguous run of bytes. It is the DFA form of the KMP failure table.
//
// States: 1..len(pattern)+1. State k+1 means the longest pattern prefix
// ending at the current input position has length k. State len(pattern)+1
// accepts and loops on any byte.
type SubstringAutomaton struct {
	searcher *PatternSearcher[byte]
}

// NewSubstringAutomaton creates an automaton accepting inputs that contain
// pattern.
func NewSubstringAutomaton(pattern []byte) (*SubstringAutomaton, error) {
	s, err := NewPatternSearcher(pattern)
	if err != nil {
		return nil, err
	}
	return &SubstringAutomaton{searcher: s}, nil
}

func (a *SubstringAutomaton) Start() State {
	return 1
}

func (a *SubstringAutomaton) Step(state State, b byte) State {
	if state == DeadState {
		return DeadState
	}
	p := a.searcher.pattern
	k := int(state) - 1
	if k >= len(p) {
		return state
	}
	for k > 0 && p[k] != b {
		k = a.searcher.table[k-1]
	}
	if p[k] == b {
		k++
	}
	return State(k + 1)
}

func (a *SubstringAutomaton) IsAccept(state State) bool {
	return int(state)-1 == len(a.searcher.pattern)
}

func (a *SubstringAutomaton) CanMatch(state State) bool {
	return state != DeadState
}
