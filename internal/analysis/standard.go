package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StandardAnalyzer splits on runs of letters, digits and underscores and
// lowercases each token.
type StandardAnalyzer struct{}

// NewStandardAnalyzer creates a new StandardAnalyzer.
func NewStandardAnalyzer() *StandardAnalyzer {
	return &StandardAnalyzer{}
}

func (a *StandardAnalyzer) Analyze(text string) []Token {
	return scanTokens(text, isWordRune, strings.ToLower)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// scanTokens emits a token for every maximal run of runes accepted by keep,
// passing each run through norm.
func scanTokens(text string, keep func(rune) bool, norm func(string) string) []Token {
	var tokens []Token
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !keep(r) {
			i += size
			continue
		}

		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !keep(r) {
				break
			}
			i += size
		}

		term := text[start:i]
		if norm != nil {
			term = norm(term)
		}
		if term == "" {
			continue
		}
		tokens = append(tokens, Token{
			Term:      term,
			Position:  len(tokens),
			StartByte: start,
			EndByte:   i,
		})
	}
	return tokens
}
