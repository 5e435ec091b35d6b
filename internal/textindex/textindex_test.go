package textindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thai-legal-rag/internal/domain"
)

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "a", DocumentID: "d", Index: 0, Text: "การจัดซื้อจัดจ้างโดยวิธีเฉพาะเจาะจง",
			Metadata: domain.ChunkMetadata{Section: "56", ChunkIndex: 0}},
		{ID: "b", DocumentID: "d", Index: 1, Text: "การตรวจรับพัสดุ",
			Metadata: domain.ChunkMetadata{Section: "79", ChunkIndex: 1}},
	}
}

func TestInsertAndQuery(t *testing.T) {
	idx, err := New("")
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Insert(ctx, sampleChunks()))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	res, err := idx.Query(ctx, "จัดซื้อ", 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a", res[0].Chunk.ID)
	assert.Equal(t, "56", res[0].Chunk.Metadata.Section)
	assert.Equal(t, "text", res[0].Source)
	assert.Greater(t, res[0].Score, 0.0)
}

func TestInsert_ReplacesByID(t *testing.T) {
	idx, err := New("")
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Insert(ctx, sampleChunks()))
	require.NoError(t, idx.Insert(ctx, sampleChunks()[:1]))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestQuery_NoTerms(t *testing.T) {
	idx, err := New("")
	require.NoError(t, err)
	defer idx.Close()

	res, err := idx.Query(context.Background(), "  the  ", 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestPersistentIndexReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.bleve")
	ctx := context.Background()

	idx, err := New(path)
	require.NoError(t, err)
	require.NoError(t, idx.Insert(ctx, sampleChunks()))
	require.NoError(t, idx.Close())

	idx, err = New(path)
	require.NoError(t, err)
	defer idx.Close()

	res, err := idx.Query(ctx, "ตรวจรับ", 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "b", res[0].Chunk.ID)
}
