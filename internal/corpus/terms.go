package corpus

import (
	"slices"

	"SeqSearch/internal/automaton"
)

// ExpandTerms returns the distinct indexed terms that contain substring,
// sorted. Each term is run through a SubstringAutomaton.
func (c *Corpus) ExpandTerms(substring string) ([]string, error) {
	a, err := automaton.NewSubstringAutomaton([]byte(substring))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	c.mu.RLock()
	for _, doc := range c.docs {
		for _, term := range doc.Terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			if automaton.Run(a, []byte(term)) {
				out = append(out, term)
			}
		}
	}
	c.mu.RUnlock()

	slices.Sort(out)
	return out, nil
}
