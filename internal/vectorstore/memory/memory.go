package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/embedding"
)

// Storage is an in-memory vector store using brute-force cosine similarity.
// Vectors are L2-normalized on write, so similarity is a dot product. When
// built with a path, Save and NewStorage persist and restore it as JSON.
type Storage struct {
	mu        sync.RWMutex
	path      string
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
	byID      map[string]int
}

type snapshot struct {
	Dimension int            `json:"dimension"`
	Chunks    []domain.Chunk `json:"chunks"`
	Vectors   [][]float64    `json:"vectors"`
}

// NewStorage loads path when it exists. An empty path keeps the store in memory only.
func NewStorage(path string) (*Storage, error) {
	s := &Storage{path: path, byID: make(map[string]int)}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode vector store %s: %w", path, err)
	}
	if len(snap.Chunks) != len(snap.Vectors) {
		return nil, fmt.Errorf("vector store %s: %d chunks but %d vectors", path, len(snap.Chunks), len(snap.Vectors))
	}
	s.dimension, s.chunks, s.vectors = snap.Dimension, snap.Chunks, snap.Vectors
	for i, c := range s.chunks {
		s.byID[c.ID] = i
	}
	return s, nil
}

// Init fixes the dimension. Existing data of another dimension is an error.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.vectors) > 0 && s.dimension != dimension {
		return fmt.Errorf("store holds %d-dim vectors, embedder produces %d; clear the store first", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

// Upsert replaces chunks with a known ID and appends the rest.
func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i, c := range chunks {
		v := embedding.Normalize(append([]float64(nil), vectors[i]...))
		if j, ok := s.byID[c.ID]; ok && c.ID != "" {
			s.chunks[j], s.vectors[j] = c, v
			continue
		}
		s.byID[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
		s.vectors = append(s.vectors, v)
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	q := embedding.Normalize(append([]float64(nil), vector...))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = dot(s.vectors[i], q)
	}
	// Get topK indexes
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j], Source: "vector"})
	}
	return results, nil
}

// Chunks returns a copy of every stored chunk, in insertion order.
func (s *Storage) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.chunks...)
}

// Len is the number of stored vectors.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	s.byID = make(map[string]int)
	return nil
}

// Save writes the store to its path via a temp file and rename. Without a
// path it does nothing.
func (s *Storage) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	data, err := json.Marshal(snapshot{Dimension: s.dimension, Chunks: s.chunks, Vectors: s.vectors})
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
