// Package textindex is the keyword side of retrieval: a bleve index over
// Thai bigram terms that receives every chunk written to the vector store.
package textindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/thaitoken"
)

const (
	termsAnalyzer = "lawrag_terms"
	batchSize     = 500
)

// document is what bleve stores per chunk. Terms are pre-tokenized so the
// index does not depend on bleve's segmenter handling Thai.
type document struct {
	Terms   string `json:"terms"`
	Payload string `json:"payload"`
}

// Index wraps a bleve index.
type Index struct {
	index bleve.Index
	log   *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Index) {
		if l != nil {
			i.log = l
		}
	}
}

// New opens the index at path, creating it when missing. An empty path
// yields an in-memory index.
func New(path string, opts ...Option) (*Index, error) {
	m, err := newMapping()
	if err != nil {
		return nil, err
	}
	var idx bleve.Index
	switch {
	case path == "":
		idx, err = bleve.NewMemOnly(m)
	default:
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open text index %q: %w", path, err)
	}
	i := &Index{index: idx, log: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func newMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(termsAnalyzer, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": whitespace.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("register analyzer: %w", err)
	}

	terms := bleve.NewTextFieldMapping()
	terms.Analyzer = termsAnalyzer
	terms.Store = false

	payload := bleve.NewTextFieldMapping()
	payload.Index = false
	payload.Store = true
	payload.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false
	doc.AddFieldMappingsAt("terms", terms)
	doc.AddFieldMappingsAt("payload", payload)
	im.DefaultMapping = doc
	return im, nil
}

// Insert indexes chunks by id; re-inserting an id replaces it.
func (i *Index) Insert(ctx context.Context, chunks []domain.Chunk) error {
	batch := i.index.NewBatch()
	for n, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode chunk %s: %w", c.ID, err)
		}
		doc := document{
			Terms:   strings.Join(thaitoken.Terms(c.Text), " "),
			Payload: string(payload),
		}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
		if (n+1)%batchSize == 0 {
			if err := i.index.Batch(batch); err != nil {
				return fmt.Errorf("write batch: %w", err)
			}
			batch = i.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	}
	i.log.Debug("text index insert", zap.Int("chunks", len(chunks)))
	return nil
}

// Query returns up to topK chunks sharing terms with query, best first.
func (i *Index) Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	terms := thaitoken.Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	mq := bleve.NewMatchQuery(strings.Join(terms, " "))
	mq.SetField("terms")
	mq.Analyzer = termsAnalyzer

	req := bleve.NewSearchRequestOptions(mq, topK, 0, false)
	req.Fields = []string{"payload"}
	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("text index search: %w", err)
	}

	out := make([]domain.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, ok := hit.Fields["payload"].(string)
		if !ok {
			i.log.Warn("text index hit without payload", zap.String("id", hit.ID))
			continue
		}
		var c domain.Chunk
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode chunk %s: %w", hit.ID, err)
		}
		out = append(out, domain.SearchResult{Chunk: c, Score: hit.Score, Source: "text"})
	}
	return out, nil
}

// Count returns the number of indexed chunks.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

func (i *Index) Close() error {
	return i.index.Close()
}
