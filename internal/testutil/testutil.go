package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"SeqSearch/internal/corpus"
)

// Sample documents used across packages.
var (
	Hamlet = "To be, or not to be, that is the question: " +
		"Whether 'tis nobler in the mind to suffer " +
		"The slings and arrows of outrageous fortune"
	Sonnet = "Not marble nor the gilded monuments " +
		"Of princes shall outlive this powerful rhyme"
	Repeats = "aaaa abab ababab"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithTempDir creates a temporary directory, calls fn with its path,
// and cleans up afterwards.
func WithTempDir(t *testing.T, fn func(dir string)) {
	t.Helper()
	fn(t.TempDir())
}

// WriteFiles writes name → content pairs into dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

// NewCorpus returns a corpus with the default config holding docs
// (name → text, standard analyzer).
func NewCorpus(t testing.TB, docs map[string]string) *corpus.Corpus {
	t.Helper()
	c := corpus.New(nil, corpus.DefaultConfig(), Logger())
	for name, text := range docs {
		_, err := c.Add(name, text, "")
		require.NoError(t, err)
	}
	return c
}

// SampleCorpus returns a corpus holding the sample documents.
func SampleCorpus(t testing.TB) *corpus.Corpus {
	t.Helper()
	return NewCorpus(t, map[string]string{
		"hamlet.txt":  Hamlet,
		"sonnet.txt":  Sonnet,
		"repeats.txt": Repeats,
	})
}
