package tfidf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"sync"

	"thai-legal-rag/internal/embedding"
	"thai-legal-rag/internal/thaitoken"
)

// DefaultDimension is the number of hash buckets.
const DefaultDimension = 4096

// Embedder is a hashed TF-IDF vectorizer over thaitoken terms. Terms hash
// into a fixed number of buckets, which keeps vectors comparable across runs
// as the corpus grows.
type Embedder struct {
	mu        sync.RWMutex
	dimension int
	docs      int
	df        []int
}

// NewEmbedder creates an unprepared embedder; dimension <= 0 uses DefaultDimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{
		dimension: dimension,
		df:        make([]int, dimension),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare adds the corpus to the document-frequency table. Repeated calls
// accumulate, so batches indexed in separate runs share one IDF.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, text := range corpus {
		seen := make(map[int]struct{})
		for _, tok := range thaitoken.Terms(text) {
			seen[e.bucket(tok)] = struct{}{}
		}
		for b := range seen {
			e.df[b]++
		}
		e.docs++
	}
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes L2-normalized TF-IDF vectors.
func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.docs == 0 {
		return nil, errors.New("tfidf embedder not prepared")
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *Embedder) embed(text string) []float64 {
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range thaitoken.Terms(text) {
		tf[e.bucket(tok)]++
		total++
	}
	if total == 0 {
		return vec
	}
	n := float64(e.docs)
	for b, count := range tf {
		// Smoothed IDF
		idf := math.Log((1+n)/(1+float64(e.df[b]))) + 1.0
		vec[b] = float64(count) / float64(total) * idf
	}
	return embedding.Normalize(vec)
}

func (e *Embedder) bucket(tok string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tok))
	return int(h.Sum32() % uint32(e.dimension))
}

type state struct {
	Dimension int   `json:"dimension"`
	Docs      int   `json:"docs"`
	DF        []int `json:"df"`
}

// Save writes the document-frequency table to path.
func (e *Embedder) Save(path string) error {
	e.mu.RLock()
	data, err := json.Marshal(state{Dimension: e.dimension, Docs: e.docs, DF: e.df})
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load restores a table written by Save. A missing file leaves the embedder
// unprepared and is not an error.
func (e *Embedder) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode tfidf state: %w", err)
	}
	if st.Dimension != len(st.DF) || st.Dimension <= 0 {
		return fmt.Errorf("tfidf state: dimension %d does not match table of %d", st.Dimension, len(st.DF))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dimension, e.docs, e.df = st.Dimension, st.Docs, st.DF
	return nil
}
