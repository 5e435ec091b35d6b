// Package index writes chunks to the vector store and the text index
// together and fuses what the two return at query time.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/embedding"
	"thai-legal-rag/internal/vectorstore"
)

// Ledger remembers chunk texts that were indexed in earlier runs.
type Ledger interface {
	IsIndexed(ctx context.Context, text string) (bool, error)
	MarkIndexed(ctx context.Context, text, sourceID string) error
}

// Manager is the single writer for both indexes. Writes are serialised so
// concurrent document workers can share one Manager.
type Manager struct {
	mu          sync.Mutex
	embedder    domain.Embedder
	store       domain.VectorStore
	text        domain.TextIndex
	ledger      Ledger
	log         *zap.Logger
	initialized bool
}

type Option func(*Manager)

// WithTextIndex adds the keyword index that receives every chunk.
func WithTextIndex(t domain.TextIndex) Option {
	return func(m *Manager) { m.text = t }
}

// WithLedger skips chunks whose text is already recorded.
func WithLedger(l Ledger) Option {
	return func(m *Manager) { m.ledger = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func NewManager(embedder domain.Embedder, store domain.VectorStore, opts ...Option) *Manager {
	m := &Manager{embedder: embedder, store: store, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddResult counts what AddBatch did.
type AddResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// AddBatch embeds and stores chunks not yet indexed. Text-index failures
// are logged and do not fail the batch.
func (m *Manager) AddBatch(ctx context.Context, chunks []domain.Chunk) (AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res AddResult
	fresh := make([]domain.Chunk, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		if _, dup := seen[c.Text]; dup {
			res.Skipped++
			continue
		}
		seen[c.Text] = struct{}{}
		if m.ledger != nil {
			done, err := m.ledger.IsIndexed(ctx, c.Text)
			if err != nil {
				return res, err
			}
			if done {
				res.Skipped++
				continue
			}
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return res, nil
	}

	texts := make([]string, len(fresh))
	for i, c := range fresh {
		texts[i] = c.Text
	}
	if err := m.embedder.Prepare(texts); err != nil {
		return res, fmt.Errorf("prepare embedder: %w", err)
	}
	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return res, fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}
	if len(vectors) != len(fresh) {
		return res, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(fresh))
	}
	if err := m.ensureInit(len(vectors[0])); err != nil {
		return res, err
	}
	if err := m.store.Upsert(ctx, fresh, vectors); err != nil {
		return res, fmt.Errorf("vector upsert: %w", err)
	}
	if m.text != nil {
		if err := m.text.Insert(ctx, fresh); err != nil {
			m.log.Warn("text index insert failed", zap.Int("chunks", len(fresh)), zap.Error(err))
		}
	}
	if m.ledger != nil {
		for _, c := range fresh {
			if err := m.ledger.MarkIndexed(ctx, c.Text, sourceOf(c)); err != nil {
				return res, err
			}
		}
	}
	res.Added = len(fresh)
	m.log.Debug("batch indexed", zap.Int("added", res.Added), zap.Int("skipped", res.Skipped))
	return res, nil
}

func (m *Manager) ensureInit(dimension int) error {
	if m.initialized {
		return nil
	}
	if err := m.store.Init(dimension); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	m.initialized = true
	return nil
}

func sourceOf(c domain.Chunk) string {
	if c.Metadata.SourceID != "" {
		return c.Metadata.SourceID
	}
	return c.DocumentID
}

// Hits are the raw results of one query, per source.
type Hits struct {
	Vector []domain.SearchResult
	Text   []domain.SearchResult
	// ZeroQuery is set when the embedder knew none of the query's terms
	// and the vector store was not consulted.
	ZeroQuery bool
}

// All returns vector hits followed by text hits.
func (h Hits) All() []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(h.Vector)+len(h.Text))
	out = append(out, h.Vector...)
	return append(out, h.Text...)
}

// Search queries both indexes with topK each.
func (m *Manager) Search(ctx context.Context, query string, topK int) (Hits, error) {
	var hits Hits
	vectors, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return hits, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return hits, errors.New("embedder returned no query vector")
	}
	if embedding.IsZero(vectors[0]) {
		hits.ZeroQuery = true
	} else {
		hits.Vector, err = m.store.Search(ctx, vectors[0], topK)
		if err != nil {
			return hits, fmt.Errorf("vector search: %w", err)
		}
	}
	if m.text != nil {
		hits.Text, err = m.text.Query(ctx, query, topK)
		if err != nil {
			m.log.Warn("text index query failed", zap.Error(err))
			hits.Text = nil
		}
	}
	return hits, nil
}

// Save persists stores that live in process memory.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.store.(vectorstore.Persistent); ok {
		return p.Save()
	}
	return nil
}
