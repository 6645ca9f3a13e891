package analysis

// Token represents a single token produced by an analyzer.
type Token struct {
	Term      string `json:"term"`
	Position  int    `json:"position"`
	StartByte int    `json:"start_byte"`
	EndByte   int    `json:"end_byte"`
}

// Analyzer turns text into a sequence of tokens. Implementations must be
// safe for concurrent use.
type Analyzer interface {
	Analyze(text string) []Token
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc func(text string) []Token

// Analyze calls f(text).
func (f AnalyzerFunc) Analyze(text string) []Token {
	return f(text)
}

// Terms returns the term sequence of tokens, the form phrase search runs on.
func Terms(tokens []Token) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return terms
}
