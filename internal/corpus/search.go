package corpus

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"SeqSearch/internal/analysis"
	"SeqSearch/internal/automaton"
)

// Mode selects what a query pattern is matched against.
type Mode string

const (
	// ModeBytes matches the pattern against the raw document bytes.
	ModeBytes Mode = "bytes"
	// ModePhrase analyzes the pattern and matches its terms against the
	// document's term sequence.
	ModePhrase Mode = "phrase"
)

// Query describes a corpus search.
type Query struct {
	Pattern string `json:"pattern"`
	Mode    Mode   `json:"mode"`

	// All enumerates every occurrence, overlapping ones included. Otherwise
	// only the first occurrence per document is reported.
	All bool `json:"all"`

	// Limit caps the occurrences reported per document when All is set.
	Limit int `json:"limit"`

	// DocumentIDs restricts the search. Empty means every document.
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// Occurrence locates one match inside a document. Index is a byte offset
// in bytes mode and a token position in phrase mode.
type Occurrence struct {
	Index     int `json:"index"`
	StartByte int `json:"start_byte"`
	EndByte   int `json:"end_byte"`
}

// Hit lists the occurrences found in one document.
type Hit struct {
	DocumentID  string       `json:"document_id"`
	Name        string       `json:"name"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Result is the outcome of a Search.
type Result struct {
	Hits             []Hit         `json:"hits"`
	TotalOccurrences int           `json:"total_occurrences"`
	DocumentsScanned int           `json:"documents_scanned"`
	Took             time.Duration `json:"took"`
}

// Search runs q over the corpus. Documents are searched concurrently,
// sharing one searcher per analyzer. Documents shorter than the pattern
// are skipped.
func (c *Corpus) Search(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()

	if q.Mode == "" {
		q.Mode = ModeBytes
	}
	if q.Mode != ModeBytes && q.Mode != ModePhrase {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, q.Mode)
	}
	if q.Pattern == "" {
		return nil, automaton.ErrEmptyPattern
	}

	docs, err := c.selectDocuments(q.DocumentIDs)
	if err != nil {
		return nil, err
	}

	var search func(ctx context.Context, doc *Document) ([]Occurrence, error)
	switch q.Mode {
	case ModeBytes:
		search, err = c.bytesSearch(q)
	case ModePhrase:
		search, err = c.phraseSearch(q, docs)
	}
	if err != nil {
		return nil, err
	}

	if c.config.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.SearchTimeout)
		defer cancel()
	}

	found := make([][]Occurrence, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.SearchConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			occ, err := search(gctx, doc)
			if err != nil {
				return fmt.Errorf("search document %s: %w", doc.ID, err)
			}
			found[i] = occ
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Warn("search aborted", "pattern_len", len(q.Pattern), "mode", q.Mode, "error", err)
		return nil, err
	}

	result := &Result{DocumentsScanned: len(docs)}
	for i, occ := range found {
		if len(occ) == 0 {
			continue
		}
		result.Hits = append(result.Hits, Hit{
			DocumentID:  docs[i].ID,
			Name:        docs[i].Name,
			Occurrences: occ,
		})
		result.TotalOccurrences += len(occ)
	}
	slices.SortFunc(result.Hits, func(a, b Hit) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.DocumentID, b.DocumentID))
	})
	result.Took = time.Since(start)

	c.logger.Debug("search complete",
		"mode", q.Mode,
		"documents", len(docs),
		"hits", len(result.Hits),
		"occurrences", result.TotalOccurrences,
		"took", result.Took,
	)
	return result, nil
}

func (c *Corpus) selectDocuments(ids []string) ([]*Document, error) {
	if len(ids) == 0 {
		return c.List(), nil
	}
	docs := make([]*Document, 0, len(ids))
	for _, id := range ids {
		doc, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Corpus) bytesSearch(q Query) (func(context.Context, *Document) ([]Occurrence, error), error) {
	s, err := automaton.NewPatternSearcher([]byte(q.Pattern))
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, doc *Document) ([]Occurrence, error) {
		idx, err := Collect(ctx, s, doc.data, q.All, q.Limit)
		if err != nil {
			return nil, err
		}
		occ := make([]Occurrence, len(idx))
		for i, at := range idx {
			occ[i] = Occurrence{Index: at, StartByte: at, EndByte: at + s.Len()}
		}
		return occ, nil
	}, nil
}

// phraseSearch builds one term searcher per analyzer used by docs, since
// the pattern has to be analyzed the same way as the text it is matched
// against.
func (c *Corpus) phraseSearch(q Query, docs []*Document) (func(context.Context, *Document) ([]Occurrence, error), error) {
	searchers := make(map[string]*automaton.PatternSearcher[string])
	build := func(analyzer string) error {
		if _, ok := searchers[analyzer]; ok {
			return nil
		}
		a, err := c.registry.Get(analyzer)
		if err != nil {
			return err
		}
		s, err := automaton.NewPatternSearcher(analysis.Terms(a.Analyze(q.Pattern)))
		if err != nil {
			return fmt.Errorf("phrase %q has no terms under analyzer %q: %w", q.Pattern, analyzer, err)
		}
		searchers[analyzer] = s
		return nil
	}

	// An empty selection still validates the pattern, under the default analyzer.
	if len(docs) == 0 {
		if err := build(c.config.DefaultAnalyzer); err != nil {
			return nil, err
		}
	}
	for _, doc := range docs {
		if err := build(doc.Analyzer); err != nil {
			return nil, err
		}
	}

	return func(ctx context.Context, doc *Document) ([]Occurrence, error) {
		s := searchers[doc.Analyzer]
		idx, err := Collect(ctx, s, doc.Terms, q.All, q.Limit)
		if err != nil {
			return nil, err
		}
		occ := make([]Occurrence, len(idx))
		for i, at := range idx {
			occ[i] = Occurrence{
				Index:     at,
				StartByte: doc.Tokens[at].StartByte,
				EndByte:   doc.Tokens[at+s.Len()-1].EndByte,
			}
		}
		return occ, nil
	}, nil
}

// Collect returns the first occurrence of s in subject, or every
// occurrence up to limit when all is set (limit <= 0 means no limit).
// Subjects shorter than the pattern yield nothing. Enumeration stops with
// the context error once ctx is done.
func Collect[T any](ctx context.Context, s *automaton.PatternSearcher[T], subject []T, all bool, limit int) ([]int, error) {
	if len(subject) < s.Len() {
		return nil, nil
	}
	if !all {
		idx, err := s.MatchSlice(subject)
		if err != nil || idx == automaton.NotFound {
			return nil, err
		}
		return []int{idx}, nil
	}

	seq, err := s.MatchesSlice(subject)
	if err != nil {
		return nil, err
	}
	var out []int
	for idx := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, idx)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
