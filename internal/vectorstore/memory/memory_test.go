package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/vectorstore"
)

var _ vectorstore.Persistent = (*Storage)(nil)

func chunk(id, text string) domain.Chunk {
	return domain.Chunk{ID: id, DocumentID: "doc", Text: text}
}

func TestStorage_SearchOrder(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage("")
	require.NoError(t, err)
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(ctx,
		[]domain.Chunk{chunk("a", "A"), chunk("b", "B"), chunk("c", "C")},
		[][]float64{{1, 0}, {0, 1}, {1, 1}},
	))

	res, err := s.Search(ctx, []float64{2, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].Chunk.ID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	assert.Equal(t, "c", res[1].Chunk.ID)
	assert.Equal(t, "vector", res[0].Source)
}

func TestStorage_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage("")
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a", "old")}, [][]float64{{1, 0}}))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a", "new")}, [][]float64{{0, 1}}))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "new", s.Chunks()[0].Text)
}

func TestStorage_Mismatches(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage("")
	require.NoError(t, s.Init(2))

	assert.Error(t, s.Upsert(ctx, []domain.Chunk{chunk("a", "")}, nil))
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{chunk("a", "")}, [][]float64{{1, 2, 3}}))
	assert.Error(t, s.Init(0))
}

func TestStorage_SaveAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors", "store.json")

	s, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a", "ก")}, [][]float64{{3, 4}}))
	require.NoError(t, s.Save())

	reloaded, err := NewStorage(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
	assert.Error(t, reloaded.Init(3))
	require.NoError(t, reloaded.Init(2))

	res, err := reloaded.Search(ctx, []float64{3, 4}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "ก", res[0].Chunk.Text)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
}

func TestStorage_Clear(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage("")
	require.NoError(t, s.Init(1))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{chunk("a", "")}, [][]float64{{1}}))
	require.NoError(t, s.Clear())

	res, err := s.Search(ctx, []float64{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}
