package index

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thai-legal-rag/internal/dedup"
	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/embedding/tfidf"
	"thai-legal-rag/internal/textindex"
	"thai-legal-rag/internal/vectorstore/memory"
)

func chunk(id, text string) domain.Chunk {
	return domain.Chunk{ID: id, DocumentID: "doc", Text: text,
		Metadata: domain.ChunkMetadata{SourceID: "file-1"}}
}

func newManager(t *testing.T) (*Manager, *memory.Storage, *dedup.Ledger) {
	t.Helper()
	store, err := memory.NewStorage("")
	require.NoError(t, err)
	text, err := textindex.New("")
	require.NoError(t, err)
	t.Cleanup(func() { text.Close() })
	ledger, err := dedup.Open(filepath.Join(t.TempDir(), "dedup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	m := NewManager(tfidf.NewEmbedder(256), store, WithTextIndex(text), WithLedger(ledger))
	return m, store, ledger
}

func TestAddBatch_SkipsDuplicatesAndIndexed(t *testing.T) {
	m, store, ledger := newManager(t)
	ctx := context.Background()

	res, err := m.AddBatch(ctx, []domain.Chunk{
		chunk("a", "การจัดซื้อจัดจ้างโดยวิธีเฉพาะเจาะจง"),
		chunk("b", "การตรวจรับพัสดุ"),
		chunk("c", "การตรวจรับพัสดุ"),
	})
	require.NoError(t, err)
	assert.Equal(t, AddResult{Added: 2, Skipped: 1}, res)
	assert.Equal(t, 2, store.Len())

	res, err = m.AddBatch(ctx, []domain.Chunk{chunk("b", "การตรวจรับพัสดุ")})
	require.NoError(t, err)
	assert.Equal(t, AddResult{Added: 0, Skipped: 1}, res)

	st, err := ledger.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.BySource["file-1"])
}

func TestSearch_BothSources(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	_, err := m.AddBatch(ctx, []domain.Chunk{
		chunk("a", "การจัดซื้อจัดจ้างโดยวิธีเฉพาะเจาะจง"),
		chunk("b", "การตรวจรับพัสดุ"),
	})
	require.NoError(t, err)

	hits, err := m.Search(ctx, "ตรวจรับพัสดุ", 1)
	require.NoError(t, err)
	assert.False(t, hits.ZeroQuery)
	require.Len(t, hits.Vector, 1)
	assert.Equal(t, "b", hits.Vector[0].Chunk.ID)
	require.Len(t, hits.Text, 1)
	assert.Equal(t, "b", hits.Text[0].Chunk.ID)
	assert.Len(t, hits.All(), 2)
}

func TestSearch_ZeroQuery(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	_, err := m.AddBatch(ctx, []domain.Chunk{chunk("a", "การตรวจรับพัสดุ")})
	require.NoError(t, err)

	hits, err := m.Search(ctx, "the", 3)
	require.NoError(t, err)
	assert.True(t, hits.ZeroQuery)
	assert.Empty(t, hits.Vector)
}

type failingEmbedder struct{ domain.Embedder }

func (failingEmbedder) Prepare([]string) error { return nil }
func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("quota")
}

func TestAddBatch_EmbedErrorLeavesLedgerUntouched(t *testing.T) {
	store, err := memory.NewStorage("")
	require.NoError(t, err)
	ledger, err := dedup.Open(filepath.Join(t.TempDir(), "dedup.db"))
	require.NoError(t, err)
	defer ledger.Close()

	m := NewManager(failingEmbedder{}, store, WithLedger(ledger))
	_, err = m.AddBatch(context.Background(), []domain.Chunk{chunk("a", "x")})
	assert.Error(t, err)

	ok, err := ledger.IsIndexed(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, ok)
}
