package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/generation"
	"thai-legal-rag/internal/index"
	"thai-legal-rag/internal/thaitoken"
)

// Searcher queries the vector and text indexes together.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) (index.Hits, error)
}

// ChunkLister exposes every indexed chunk for the lexical fallback.
type ChunkLister interface {
	Chunks() []domain.Chunk
}

// QueryConfig tunes retrieval.
type QueryConfig struct {
	TopK        int
	RerankTopK  int
	ExpandQuery bool
}

// QueryService retrieves chunks for a question and answers it.
type QueryService struct {
	searcher Searcher
	answerer *generation.Answerer
	expander *generation.Expander
	chunks   ChunkLister
	cfg      QueryConfig
	log      *zap.Logger
}

type QueryOption func(*QueryService)

func WithExpander(e *generation.Expander) QueryOption {
	return func(s *QueryService) { s.expander = e }
}

// WithLexicalFallback enables term-overlap ranking over all chunks when the
// embedder cannot represent the query.
func WithLexicalFallback(c ChunkLister) QueryOption {
	return func(s *QueryService) { s.chunks = c }
}

func WithQueryLogger(l *zap.Logger) QueryOption {
	return func(s *QueryService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewQueryService(searcher Searcher, answerer *generation.Answerer, cfg QueryConfig, opts ...QueryOption) *QueryService {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.RerankTopK <= 0 {
		cfg.RerankTopK = 5
	}
	s := &QueryService{searcher: searcher, answerer: answerer, cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retrieve returns the fused top chunks for query.
func (s *QueryService) Retrieve(ctx context.Context, query string) ([]domain.SearchResult, error) {
	queries := []string{query}
	if s.cfg.ExpandQuery && s.expander != nil {
		queries = s.expander.Expand(ctx, query)
	}
	var all []domain.SearchResult
	zero := true
	for _, q := range queries {
		hits, err := s.searcher.Search(ctx, q, s.cfg.TopK)
		if err != nil {
			return nil, err
		}
		if !hits.ZeroQuery {
			zero = false
		}
		all = append(all, hits.All()...)
	}
	if (zero || len(all) == 0) && s.chunks != nil {
		s.log.Info("falling back to lexical ranking", zap.String("query", query))
		all = append(all, s.lexicalSearch(query, s.cfg.TopK)...)
	}
	ranked := index.Rerank(all, s.cfg.RerankTopK)
	s.log.Debug("retrieved", zap.Int("queries", len(queries)), zap.Int("raw", len(all)), zap.Int("ranked", len(ranked)))
	return ranked, nil
}

// Ask retrieves and answers.
func (s *QueryService) Ask(ctx context.Context, question string) (generation.Answer, []domain.SearchResult, error) {
	results, err := s.Retrieve(ctx, question)
	if err != nil {
		return generation.Answer{}, nil, err
	}
	if s.answerer == nil {
		return generation.Answer{}, results, errors.New("no answerer configured")
	}
	ans, err := s.answerer.Answer(ctx, question, results)
	return ans, results, err
}

func (s *QueryService) lexicalSearch(query string, topK int) []domain.SearchResult {
	qset := thaitoken.TermSet(query)
	chunks := s.chunks.Chunks()
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, 0, len(chunks))
	for i, ch := range chunks {
		if sc := overlapOchiai(qset, ch.Text); sc > 0 {
			scores = append(scores, pair{i, sc})
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, p := range scores[:topK] {
		out = append(out, domain.SearchResult{Chunk: chunks[p.idx], Score: p.score, Source: "lexical"})
	}
	return out
}

// overlapOchiai is |A∩B| / sqrt(|A||B|) over distinct terms.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	tset := thaitoken.TermSet(text)
	if len(qset) == 0 || len(tset) == 0 {
		return 0
	}
	inter := 0
	for t := range tset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(tset)))
}
