package integration

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SeqSearch/internal/automaton"
	"SeqSearch/internal/corpus"
	"SeqSearch/internal/testutil"
)

func TestConcurrentSharedSearcher(t *testing.T) {
	s, err := automaton.NewPatternSearcher([]byte("abab"))
	require.NoError(t, err)
	subject := []byte(testutil.Repeats)
	want := []int{5, 10, 12}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.MatchAll(subject, 0, len(subject))
			if err != nil {
				errs <- err
				return
			}
			if !slices.Equal(got, want) {
				errs <- fmt.Errorf("MatchAll = %v, want %v", got, want)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestConcurrentSearchWhileWriting(t *testing.T) {
	c := testutil.SampleCorpus(t)
	ctx := context.Background()

	var wg sync.WaitGroup

	// Writers add and replace documents that never contain the pattern.
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := c.Add(fmt.Sprintf("writer-%d.txt", i), fmt.Sprintf("revision %d", j), "")
				assert.NoError(t, err)
			}
		}(i)
	}

	// Readers see the sample hit on every pass.
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Search(ctx, corpus.Query{Pattern: "abab", All: true})
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, 3, res.TotalOccurrences)
		}()
	}

	wg.Wait()
	assert.Equal(t, 8, c.Len())
}
