package analysis

import "unicode"

// WhitespaceAnalyzer splits text on whitespace without any normalization.
type WhitespaceAnalyzer struct{}

// NewWhitespaceAnalyzer creates a new WhitespaceAnalyzer.
func NewWhitespaceAnalyzer() *WhitespaceAnalyzer {
	return &WhitespaceAnalyzer{}
}

// Analyze splits the input on whitespace, preserving case and punctuation.
func (a *WhitespaceAnalyzer) Analyze(text string) []Token {
	return scanTokens(text, func(r rune) bool { return !unicode.IsSpace(r) }, nil)
}
