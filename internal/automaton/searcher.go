package automaton

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// NotFound is returned by Match when the window holds no occurrence.
const NotFound = -1

var (
	ErrEmptyPattern      = errors.New("automaton: pattern must not be empty")
	ErrInvalidStartIndex = errors.New("automaton: start index must be non-negative")
	ErrRangeOverflow     = errors.New("automaton: search window is shorter than the pattern or exceeds the subject")
)

// PatternSearcher locates occurrences of a fixed pattern in a subject
// sequence using the Knuth-Morris-Pratt algorithm. Elements are opaque;
// only equality is required of them.
//
// A PatternSearcher is immutable after construction and safe for
// concurrent use by multiple goroutines.
type PatternSearcher[T any] struct {
	pattern []T
	table   []int
	eq      func(a, b T) bool
}

// NewPatternSearcher builds a searcher for pattern using == for comparison.
func NewPatternSearcher[T comparable](pattern []T) (*PatternSearcher[T], error) {
	return NewPatternSearcherFunc(pattern, func(a, b T) bool { return a == b })
}

// NewPatternSearcherFunc builds a searcher for pattern using eq to compare
// elements. It is meant for element types that are not comparable.
// The pattern is copied; later changes to the caller's slice have no effect.
func NewPatternSearcherFunc[T any](pattern []T, eq func(a, b T) bool) (*PatternSearcher[T], error) {
	if eq == nil {
		panic("automaton: nil equality function")
	}
	if len(pattern) == 0 {
		return nil, ErrEmptyPattern
	}
	s := &PatternSearcher[T]{
		pattern: slices.Clone(pattern),
		eq:      eq,
	}
	s.table = s.buildTable()
	return s, nil
}

// buildTable computes the failure table: table[i] is the length of the
// longest proper prefix of pattern[:i+1] that is also a suffix of it.
func (s *PatternSearcher[T]) buildTable() []int {
	n := len(s.pattern)
	table := make([]int, n)
	scan := 0
	for i := 1; i < n; {
		switch {
		case s.eq(s.pattern[scan], s.pattern[i]):
			scan++
			table[i] = scan
			i++
		case scan == 0:
			table[i] = 0
			i++
		default:
			scan = table[scan-1]
		}
	}
	return table
}

// Pattern returns a copy of the pattern.
func (s *PatternSearcher[T]) Pattern() []T {
	return slices.Clone(s.pattern)
}

// Len returns the pattern length.
func (s *PatternSearcher[T]) Len() int {
	return len(s.pattern)
}

// Table returns a copy of the failure table.
func (s *PatternSearcher[T]) Table() []int {
	return slices.Clone(s.table)
}

// Match returns the start of the first occurrence of the pattern inside
// subject[startIndex:count], or NotFound. count is an absolute, exclusive
// upper bound, not a length.
func (s *PatternSearcher[T]) Match(subject []T, startIndex, count int) (int, error) {
	if err := s.checkWindow(len(subject), startIndex, count); err != nil {
		return NotFound, err
	}
	return s.next(subject, startIndex, count), nil
}

// Matches returns the starts of every occurrence inside
// subject[startIndex:count] in ascending order. Occurrences may overlap:
// after a match at index the scan resumes at index+1 with an empty
// pattern cursor, so "aa" is found at 0, 1 and 2 in "aaaa".
//
// The window is validated before the sequence is returned. The sequence is
// lazy; each range over it starts a fresh scan, and breaking out of the
// loop stops the scan.
func (s *PatternSearcher[T]) Matches(subject []T, startIndex, count int) (iter.Seq[int], error) {
	if err := s.checkWindow(len(subject), startIndex, count); err != nil {
		return nil, err
	}
	return func(yield func(int) bool) {
		for si := startIndex; si < count; {
			index := s.next(subject, si, count)
			if index == NotFound || !yield(index) {
				return
			}
			si = index + 1
		}
	}, nil
}

// MatchAll collects Matches into a slice.
func (s *PatternSearcher[T]) MatchAll(subject []T, startIndex, count int) ([]int, error) {
	seq, err := s.Matches(subject, startIndex, count)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// MatchSlice is Match over the whole subject.
func (s *PatternSearcher[T]) MatchSlice(subject []T) (int, error) {
	return s.Match(subject, 0, len(subject))
}

// MatchesSlice is Matches over the whole subject.
func (s *PatternSearcher[T]) MatchesSlice(subject []T) (iter.Seq[int], error) {
	return s.Matches(subject, 0, len(subject))
}

func (s *PatternSearcher[T]) checkWindow(size, startIndex, count int) error {
	if startIndex < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidStartIndex, startIndex)
	}
	if count < startIndex || count-startIndex < len(s.pattern) {
		return fmt.Errorf("%w: window [%d, %d) cannot hold a pattern of length %d",
			ErrRangeOverflow, startIndex, count, len(s.pattern))
	}
	if count > size {
		return fmt.Errorf("%w: count %d exceeds subject length %d", ErrRangeOverflow, count, size)
	}
	return nil
}

// next scans subject[si:count] with an empty pattern cursor and returns the
// start of the first occurrence, or NotFound. On mismatch the pattern
// cursor falls back through the failure table; the subject cursor never
// moves backwards.
func (s *PatternSearcher[T]) next(subject []T, si, count int) int {
	n := len(s.pattern)
	pi := 0
	for si < count {
		switch {
		case s.eq(subject[si], s.pattern[pi]):
			si++
			pi++
		case pi > 0:
			pi = s.table[pi-1]
		default:
			si++
		}
		if pi == n {
			return si - pi
		}
	}
	return NotFound
}
