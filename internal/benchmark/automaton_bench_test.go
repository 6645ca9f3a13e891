package benchmark

import (
	"bytes"
	"strings"
	"testing"

	"SeqSearch/internal/automaton"
)

// A naive scan backtracks on almost every byte of worstSubject.
var (
	worstSubject = []byte(strings.Repeat("a", 1<<16) + "b")
	worstPattern = []byte(strings.Repeat("a", 64) + "b")
)

func BenchmarkSearcher_Build_Short(b *testing.B) {
	pattern := []byte("abc")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = automaton.NewPatternSearcher(pattern)
	}
}

func BenchmarkSearcher_Build_Long(b *testing.B) {
	pattern := []byte(strings.Repeat("abacabad", 32))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = automaton.NewPatternSearcher(pattern)
	}
}

func BenchmarkSearcher_Match_WorstCase(b *testing.B) {
	s, _ := automaton.NewPatternSearcher(worstPattern)
	b.SetBytes(int64(len(worstSubject)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.MatchSlice(worstSubject)
	}
}

// BenchmarkBytesIndex_WorstCase is the standard library baseline for
// BenchmarkSearcher_Match_WorstCase.
func BenchmarkBytesIndex_WorstCase(b *testing.B) {
	b.SetBytes(int64(len(worstSubject)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bytes.Index(worstSubject, worstPattern)
	}
}

func BenchmarkSearcher_Matches_Overlapping(b *testing.B) {
	s, _ := automaton.NewPatternSearcher([]byte("aa"))
	subject := bytes.Repeat([]byte("a"), 1<<14)
	b.SetBytes(int64(len(subject)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq, _ := s.MatchesSlice(subject)
		n := 0
		for range seq {
			n++
		}
		if n != len(subject)-1 {
			b.Fatalf("got %d occurrences", n)
		}
	}
}

func BenchmarkSearcher_Tokens(b *testing.B) {
	s, _ := automaton.NewPatternSearcher([]string{"to", "be"})
	subject := strings.Fields(strings.Repeat("to be or not to be ", 512))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.MatchAll(subject, 0, len(subject))
	}
}

func BenchmarkSubstringAutomaton_Run(b *testing.B) {
	a, _ := automaton.NewSubstringAutomaton([]byte("ell"))
	input := []byte("internationalization-hello")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = automaton.Run(a, input)
	}
}
