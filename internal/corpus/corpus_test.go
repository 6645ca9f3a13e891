package corpus_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SeqSearch/internal/analysis"
	"SeqSearch/internal/automaton"
	"SeqSearch/internal/corpus"
	"SeqSearch/internal/testutil"
)

func TestCorpus_AddGetDelete(t *testing.T) {
	c := testutil.NewCorpus(t, nil)

	doc, err := c.Add("a.txt", "Hello World", "")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "a.txt", doc.Name)
	assert.Equal(t, analysis.DefaultAnalyzer, doc.Analyzer)
	assert.Equal(t, []string{"hello", "world"}, doc.Terms)
	assert.Equal(t, "Hello World", doc.Text())
	assert.Equal(t, 11, doc.Size)

	got, err := c.Get(doc.ID)
	require.NoError(t, err)
	assert.Same(t, doc, got)

	byName, ok := c.Lookup("a.txt")
	require.True(t, ok)
	assert.Same(t, doc, byName)

	require.NoError(t, c.Delete(doc.ID))
	assert.Equal(t, 0, c.Len())

	_, err = c.Get(doc.ID)
	assert.ErrorIs(t, err, corpus.ErrDocumentNotFound)
	assert.ErrorIs(t, c.Delete(doc.ID), corpus.ErrDocumentNotFound)
	_, ok = c.Lookup("a.txt")
	assert.False(t, ok)
}

func TestCorpus_AddReplacesByName(t *testing.T) {
	c := testutil.NewCorpus(t, nil)

	first, err := c.Add("doc.txt", "one two", "")
	require.NoError(t, err)

	same, err := c.Add("doc.txt", "one two", "")
	require.NoError(t, err)
	assert.Same(t, first, same, "unchanged content must not replace the document")

	changed, err := c.Add("doc.txt", "three four", "")
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
	assert.Equal(t, first.ID, changed.ID)
	assert.Equal(t, []string{"three", "four"}, changed.Terms)
	assert.Equal(t, 1, c.Len())

	reanalyzed, err := c.Add("doc.txt", "three four", "keyword")
	require.NoError(t, err)
	assert.Equal(t, []string{"three four"}, reanalyzed.Terms)
}

func TestCorpus_AddInvalid(t *testing.T) {
	c := testutil.NewCorpus(t, nil)

	_, err := c.Add("", "text", "")
	assert.ErrorIs(t, err, corpus.ErrMissingName)

	_, err = c.Add("x.txt", "text", "klingon")
	assert.ErrorIs(t, err, analysis.ErrUnknownAnalyzer)
	assert.Equal(t, 0, c.Len())
}

func TestCorpus_ListSortedAndRemoveByName(t *testing.T) {
	c := testutil.SampleCorpus(t)

	var names []string
	for _, doc := range c.List() {
		names = append(names, doc.Name)
	}
	assert.Equal(t, []string{"hamlet.txt", "repeats.txt", "sonnet.txt"}, names)

	assert.True(t, c.RemoveByName("sonnet.txt"))
	assert.False(t, c.RemoveByName("sonnet.txt"))
	assert.Equal(t, 2, c.Len())
}

func TestCorpus_SearchBytes(t *testing.T) {
	c := testutil.SampleCorpus(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query corpus.Query
		want  map[string][]int
	}{
		{
			name:  "first_occurrence_per_document",
			query: corpus.Query{Pattern: "the"},
			want: map[string][]int{
				"hamlet.txt": {strings.Index(testutil.Hamlet, "the")},
				"sonnet.txt": {strings.Index(testutil.Sonnet, "the")},
			},
		},
		{
			name:  "overlapping_occurrences",
			query: corpus.Query{Pattern: "aa", All: true},
			want:  map[string][]int{"repeats.txt": {0, 1, 2}},
		},
		{
			name:  "overlapping_words",
			query: corpus.Query{Pattern: "abab", Mode: corpus.ModeBytes, All: true},
			want:  map[string][]int{"repeats.txt": {5, 10, 12}},
		},
		{
			name:  "limit_stops_enumeration",
			query: corpus.Query{Pattern: "abab", All: true, Limit: 2},
			want:  map[string][]int{"repeats.txt": {5, 10}},
		},
		{
			name:  "case_sensitive",
			query: corpus.Query{Pattern: "To be"},
			want:  map[string][]int{"hamlet.txt": {0}},
		},
		{
			name:  "no_match",
			query: corpus.Query{Pattern: "zzz"},
			want:  map[string][]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, 3, res.DocumentsScanned)

			got := make(map[string][]int)
			total := 0
			for _, hit := range res.Hits {
				for _, occ := range hit.Occurrences {
					got[hit.Name] = append(got[hit.Name], occ.Index)
					assert.Equal(t, occ.Index, occ.StartByte)
					assert.Equal(t, occ.Index+len(tt.query.Pattern), occ.EndByte)
					total++
				}
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, total, res.TotalOccurrences)
		})
	}
}

func TestCorpus_SearchPhrase(t *testing.T) {
	c := testutil.SampleCorpus(t)

	res, err := c.Search(context.Background(), corpus.Query{Pattern: "TO BE!", Mode: corpus.ModePhrase, All: true})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)

	hit := res.Hits[0]
	assert.Equal(t, "hamlet.txt", hit.Name)
	assert.Equal(t, []corpus.Occurrence{
		{Index: 0, StartByte: 0, EndByte: 5},
		{Index: 4, StartByte: 14, EndByte: 19},
	}, hit.Occurrences)
	assert.Equal(t, "to be", testutil.Hamlet[14:19])
}

func TestCorpus_SearchPhrasePerAnalyzer(t *testing.T) {
	c := testutil.NewCorpus(t, nil)
	_, err := c.Add("std.txt", "Red Fish, blue fish", "")
	require.NoError(t, err)
	_, err = c.Add("ws.txt", "Red Fish, blue fish", "whitespace")
	require.NoError(t, err)

	res, err := c.Search(context.Background(), corpus.Query{Pattern: "red fish", Mode: corpus.ModePhrase})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1, "whitespace analyzer keeps case, so only std.txt matches")
	assert.Equal(t, "std.txt", res.Hits[0].Name)
}

func TestCorpus_SearchErrors(t *testing.T) {
	c := testutil.SampleCorpus(t)
	ctx := context.Background()

	_, err := c.Search(ctx, corpus.Query{Pattern: ""})
	assert.ErrorIs(t, err, automaton.ErrEmptyPattern)

	_, err = c.Search(ctx, corpus.Query{Pattern: "!!", Mode: corpus.ModePhrase})
	assert.ErrorIs(t, err, automaton.ErrEmptyPattern)

	_, err = c.Search(ctx, corpus.Query{Pattern: "x", Mode: "regex"})
	assert.ErrorIs(t, err, corpus.ErrInvalidMode)

	_, err = c.Search(ctx, corpus.Query{Pattern: "x", DocumentIDs: []string{"missing"}})
	assert.ErrorIs(t, err, corpus.ErrDocumentNotFound)
}

func TestCorpus_SearchPhraseEmptyCorpus(t *testing.T) {
	c := testutil.NewCorpus(t, nil)
	ctx := context.Background()

	_, err := c.Search(ctx, corpus.Query{Pattern: "!!", Mode: corpus.ModePhrase})
	assert.ErrorIs(t, err, automaton.ErrEmptyPattern)

	res, err := c.Search(ctx, corpus.Query{Pattern: "to be", Mode: corpus.ModePhrase})
	require.NoError(t, err)
	assert.Zero(t, res.DocumentsScanned)
	assert.Empty(t, res.Hits)
}

func TestCorpus_SearchSelectedDocuments(t *testing.T) {
	c := testutil.SampleCorpus(t)
	sonnet, ok := c.Lookup("sonnet.txt")
	require.True(t, ok)

	res, err := c.Search(context.Background(), corpus.Query{Pattern: "the", DocumentIDs: []string{sonnet.ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.DocumentsScanned)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, sonnet.ID, res.Hits[0].DocumentID)
}

func TestCorpus_SearchSkipsShortDocuments(t *testing.T) {
	c := testutil.NewCorpus(t, map[string]string{"tiny.txt": "ab", "big.txt": "xxabcabc"})

	res, err := c.Search(context.Background(), corpus.Query{Pattern: "abc", All: true})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "big.txt", res.Hits[0].Name)
	assert.Len(t, res.Hits[0].Occurrences, 2)
}

func TestCorpus_SearchCancelled(t *testing.T) {
	c := testutil.SampleCorpus(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, corpus.Query{Pattern: "a", All: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCorpus_SearchTimeout(t *testing.T) {
	cfg := corpus.DefaultConfig()
	cfg.SearchTimeout = time.Nanosecond
	c := corpus.New(nil, cfg, testutil.Logger())
	for i := 0; i < 50; i++ {
		_, err := c.Add(fmt.Sprintf("doc-%02d.txt", i), strings.Repeat("a", 1<<14), "")
		require.NoError(t, err)
	}

	_, err := c.Search(context.Background(), corpus.Query{Pattern: "a", All: true})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCorpus_SearchConcurrent(t *testing.T) {
	c := testutil.SampleCorpus(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Search(context.Background(), corpus.Query{Pattern: "ab", All: true})
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, 5, res.TotalOccurrences)
		}()
	}
	wg.Wait()
}

func TestCorpus_ExpandTerms(t *testing.T) {
	c := testutil.SampleCorpus(t)

	terms, err := c.ExpandTerms("ou")
	require.NoError(t, err)
	assert.Equal(t, []string{"outlive", "outrageous"}, terms)

	terms, err = c.ExpandTerms("zz")
	require.NoError(t, err)
	assert.Empty(t, terms)

	_, err = c.ExpandTerms("")
	assert.ErrorIs(t, err, automaton.ErrEmptyPattern)
}
