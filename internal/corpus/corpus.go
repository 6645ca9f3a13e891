package corpus

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"SeqSearch/internal/analysis"
	"SeqSearch/internal/storage"
)

var (
	ErrDocumentNotFound = errors.New("corpus: document not found")
	ErrMissingName      = errors.New("corpus: document name is required")
	ErrInvalidMode      = errors.New("corpus: invalid search mode")
	ErrNotDirectory     = errors.New("corpus: not a directory")
)

// Document is an analyzed text held by the corpus. Documents are never
// modified after they are added; replacing a document swaps the pointer.
type Document struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Analyzer string           `json:"analyzer"`
	Checksum storage.Checksum `json:"checksum"`
	Size     int              `json:"size"`
	Terms    []string         `json:"-"`
	Tokens   []analysis.Token `json:"-"`
	AddedAt  time.Time        `json:"added_at"`

	data []byte
}

// Text returns the document text.
func (d *Document) Text() string {
	return string(d.data)
}

// Corpus is an in-memory set of named documents.
// It is safe for concurrent use.
type Corpus struct {
	registry *analysis.Registry
	config   Config
	logger   *slog.Logger

	mu     sync.RWMutex
	docs   map[string]*Document // ID → document
	byName map[string]string    // name → ID
}

// New creates an empty Corpus. A nil registry gets the built-in analyzers.
func New(registry *analysis.Registry, config Config, logger *slog.Logger) *Corpus {
	if registry == nil {
		registry = analysis.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Corpus{
		registry: registry,
		config:   config.withDefaults(),
		logger:   logger.With("component", "corpus"),
		docs:     make(map[string]*Document),
		byName:   make(map[string]string),
	}
}

// Registry returns the analyzer registry used by the corpus.
func (c *Corpus) Registry() *analysis.Registry {
	return c.registry
}

// Add analyzes text and stores it under name. An empty analyzer selects
// the configured default. Adding an existing name replaces that document
// and keeps its ID; if text and analyzer are unchanged the stored document
// is returned as is.
func (c *Corpus) Add(name, text, analyzer string) (*Document, error) {
	doc, _, err := c.put(name, []byte(text), analyzer)
	return doc, err
}

// put reports whether the corpus changed.
func (c *Corpus) put(name string, data []byte, analyzerName string) (*Document, bool, error) {
	if name == "" {
		return nil, false, ErrMissingName
	}
	if analyzerName == "" {
		analyzerName = c.config.DefaultAnalyzer
	}
	a, err := c.registry.Get(analyzerName)
	if err != nil {
		return nil, false, fmt.Errorf("add document %q: %w", name, err)
	}
	sum := storage.ComputeChecksum(data)

	c.mu.RLock()
	if prev, ok := c.lookupLocked(name); ok && prev.Checksum == sum && prev.Analyzer == analyzerName {
		c.mu.RUnlock()
		return prev, false, nil
	}
	c.mu.RUnlock()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, false, fmt.Errorf("generate document id: %w", err)
	}
	tokens := a.Analyze(string(data))
	doc := &Document{
		ID:       id.String(),
		Name:     name,
		Analyzer: analyzerName,
		Checksum: sum,
		Size:     len(data),
		Terms:    analysis.Terms(tokens),
		Tokens:   tokens,
		AddedAt:  time.Now().UTC(),
		data:     data,
	}

	c.mu.Lock()
	replaced := false
	if prevID, ok := c.byName[name]; ok {
		doc.ID = prevID
		replaced = true
	}
	c.docs[doc.ID] = doc
	c.byName[name] = doc.ID
	c.mu.Unlock()

	c.logger.Info("document stored",
		"id", doc.ID,
		"name", name,
		"analyzer", analyzerName,
		"bytes", doc.Size,
		"terms", len(doc.Terms),
		"replaced", replaced,
	)
	return doc, true, nil
}

// Get returns the document with the given ID.
func (c *Corpus) Get(id string) (*Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, nil
}

// Lookup returns the document stored under name.
func (c *Corpus) Lookup(name string) (*Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookupLocked(name)
}

func (c *Corpus) lookupLocked(name string) (*Document, bool) {
	id, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.docs[id], true
}

// Delete removes the document with the given ID.
func (c *Corpus) Delete(id string) error {
	c.mu.Lock()
	doc, ok := c.docs[id]
	if ok {
		delete(c.docs, id)
		delete(c.byName, doc.Name)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	c.logger.Info("document deleted", "id", id, "name", doc.Name)
	return nil
}

// RemoveByName removes the document stored under name and reports whether
// one existed.
func (c *Corpus) RemoveByName(name string) bool {
	c.mu.RLock()
	id, ok := c.byName[name]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return c.Delete(id) == nil
}

// List returns all documents sorted by name.
func (c *Corpus) List() []*Document {
	c.mu.RLock()
	docs := make([]*Document, 0, len(c.docs))
	for _, doc := range c.docs {
		docs = append(docs, doc)
	}
	c.mu.RUnlock()

	slices.SortFunc(docs, func(a, b *Document) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return docs
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
