package corpus

import (
	"time"

	"SeqSearch/internal/analysis"
)

// Config configures a Corpus.
type Config struct {
	// SearchConcurrency is the maximum number of documents searched at once.
	SearchConcurrency int `json:"search_concurrency"`

	// SearchTimeout bounds a whole Search call. Zero disables the bound.
	SearchTimeout time.Duration `json:"search_timeout"`

	// DefaultAnalyzer is used when a document names no analyzer.
	DefaultAnalyzer string `json:"default_analyzer"`

	// MaxDocumentBytes caps files read by LoadDir and Watch. Zero disables the cap.
	MaxDocumentBytes int64 `json:"max_document_bytes"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SearchConcurrency: 8,
		SearchTimeout:     10 * time.Second,
		DefaultAnalyzer:   analysis.DefaultAnalyzer,
		MaxDocumentBytes:  16 << 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SearchConcurrency <= 0 {
		c.SearchConcurrency = d.SearchConcurrency
	}
	if c.DefaultAnalyzer == "" {
		c.DefaultAnalyzer = d.DefaultAnalyzer
	}
	return c
}
