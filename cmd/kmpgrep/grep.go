package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"

	"SeqSearch/internal/analysis"
	"SeqSearch/internal/automaton"
	"SeqSearch/internal/corpus"
	"SeqSearch/internal/storage"
)

var errNoMatch = errors.New("no match")

type options struct {
	All      bool
	Count    bool
	Phrase   bool
	Analyzer string
	Color    string
	Max      int
}

// span is a byte range [start, end) of one occurrence.
type span struct {
	start, end int
}

type grepper struct {
	opts   options
	out    io.Writer
	errOut io.Writer
	find   func(data []byte) ([]span, error)

	match *color.Color
	file  *color.Color
}

// newGrepper builds a grepper for pattern. A positive Max implies All.
func newGrepper(pattern string, opts options, out, errOut io.Writer) (*grepper, error) {
	if opts.Max < 0 {
		return nil, fmt.Errorf("invalid --max %d", opts.Max)
	}
	if opts.Max > 0 {
		opts.All = true
	}
	g := &grepper{
		opts:   opts,
		out:    out,
		errOut: errOut,
		match:  color.New(color.FgRed, color.Bold),
		file:   color.New(color.FgMagenta),
	}

	switch opts.Color {
	case "", "auto":
	case "always":
		g.match.EnableColor()
		g.file.EnableColor()
	case "never":
		g.match.DisableColor()
		g.file.DisableColor()
	default:
		return nil, fmt.Errorf("invalid --color %q", opts.Color)
	}

	var err error
	if opts.Phrase {
		g.find, err = phraseFinder(pattern, opts)
	} else {
		g.find, err = bytesFinder(pattern, opts)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func bytesFinder(pattern string, opts options) (func([]byte) ([]span, error), error) {
	s, err := automaton.NewPatternSearcher([]byte(pattern))
	if err != nil {
		return nil, err
	}
	return func(data []byte) ([]span, error) {
		idx, err := corpus.Collect(context.Background(), s, data, opts.All, opts.Max)
		if err != nil {
			return nil, err
		}
		spans := make([]span, len(idx))
		for i, at := range idx {
			spans[i] = span{start: at, end: at + s.Len()}
		}
		return spans, nil
	}, nil
}

func phraseFinder(pattern string, opts options) (func([]byte) ([]span, error), error) {
	name := opts.Analyzer
	if name == "" {
		name = analysis.DefaultAnalyzer
	}
	a, err := analysis.NewRegistry().Get(name)
	if err != nil {
		return nil, err
	}
	s, err := automaton.NewPatternSearcher(analysis.Terms(a.Analyze(pattern)))
	if err != nil {
		return nil, fmt.Errorf("phrase %q has no terms: %w", pattern, err)
	}
	return func(data []byte) ([]span, error) {
		tokens := a.Analyze(string(data))
		idx, err := corpus.Collect(context.Background(), s, analysis.Terms(tokens), opts.All, opts.Max)
		if err != nil {
			return nil, err
		}
		spans := make([]span, len(idx))
		for i, at := range idx {
			spans[i] = span{start: tokens[at].StartByte, end: tokens[at+s.Len()-1].EndByte}
		}
		return spans, nil
	}, nil
}

// run searches every file. Unreadable files are reported on errOut and
// the rest are still searched.
func (g *grepper) run(files []string) (bool, error) {
	matched := false
	failed := 0
	for _, path := range files {
		n, err := g.grepFile(path)
		if err != nil {
			fmt.Fprintf(g.errOut, "kmpgrep: %v\n", err)
			failed++
			continue
		}
		if n > 0 {
			matched = true
		}
	}
	if failed > 0 {
		return matched, fmt.Errorf("%d of %d files could not be searched", failed, len(files))
	}
	return matched, nil
}

func (g *grepper) grepFile(path string) (int, error) {
	data, err := storage.ReadFileLimited(path, 0)
	if err != nil {
		return 0, err
	}
	spans, err := g.find(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	name := g.file.Sprint(path)
	if g.opts.Count {
		fmt.Fprintf(g.out, "%s:%d\n", name, len(spans))
		return len(spans), nil
	}

	lines := newLineIndex(data)
	for _, sp := range spans {
		no, start, end := lines.find(sp.start)
		stop := min(sp.end, end)
		fmt.Fprintf(g.out, "%s:%d:%d:%s%s%s\n", name, no, sp.start,
			data[start:sp.start], g.match.Sprint(string(data[sp.start:stop])), data[stop:end])
	}
	return len(spans), nil
}

// lineIndex maps byte offsets to lines.
type lineIndex struct {
	size   int
	starts []int
}

func newLineIndex(data []byte) lineIndex {
	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{size: len(data), starts: starts}
}

// find returns the 1-based line number holding off and the line's bounds,
// excluding the newline.
func (l lineIndex) find(off int) (no, start, end int) {
	i, found := slices.BinarySearch(l.starts, off)
	if !found {
		i--
	}
	start, end = l.starts[i], l.size
	if i+1 < len(l.starts) {
		end = l.starts[i+1] - 1
	}
	return i + 1, start, end
}
