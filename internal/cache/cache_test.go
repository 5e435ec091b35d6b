package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thai-legal-rag/internal/domain"
)

func sampleDoc(id string) *domain.LawDocument {
	return &domain.LawDocument{
		Filename:         "พรบ-ทดสอบ.pdf",
		SourceID:         id,
		LawName:          "พระราชบัญญัติทดสอบ พ.ศ. ๒๕๖๐",
		LawShortName:     "พ.ร.บ.ฯ 2560",
		LawType:          domain.LawTypeAct,
		LawYearBE:        "2560",
		FullText:         "มาตรา ๑ ทดสอบ",
		ExtractionEngine: domain.EngineNative,
		Sections: []domain.Section{{
			Number:     "1",
			Label:      "มาตรา ๑",
			Text:       "มาตรา ๑ ทดสอบ",
			Paragraphs: []string{"ทดสอบ"},
		}},
		TotalSections: 1,
	}
}

func TestKey(t *testing.T) {
	k := Key("abc")
	assert.Len(t, k, 16)
	assert.Equal(t, "ba7816bf8f01cfea", k)
	assert.Equal(t, k, Key("abc"))
	assert.NotEqual(t, k, Key("abd"))
}

func TestFileStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	doc, ok, err := store.Get(ctx, Key("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, doc)

	want := sampleDoc("file-1")
	require.NoError(t, store.Put(ctx, Key("file-1"), want))

	got, ok, err := store.Get(ctx, Key("file-1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileStore_Each(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "b", sampleDoc("second")))
	require.NoError(t, store.Put(ctx, "a", sampleDoc("first")))

	var ids []string
	err = store.Each(ctx, func(doc *domain.LawDocument) error {
		ids = append(ids, doc.SourceID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ids)
}

func TestFileStore_FileLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "k1", sampleDoc("x")))

	_, err = os.Stat(filepath.Join(dir, "law_k1.json"))
	assert.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "law_bad.json"), []byte("{"), 0o644))

	_, ok, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFileStore_ConcurrentDistinctKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", i)
			assert.NoError(t, store.Put(ctx, Key(id), sampleDoc(id)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		id := fmt.Sprintf("doc-%d", i)
		got, ok, err := store.Get(ctx, Key(id))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id, got.SourceID)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, KeyPrefix: "lawrag:test:" + t.Name() + ":"})
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, "none")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleDoc("r1")
	require.NoError(t, store.Put(ctx, "r1", want))
	got, ok, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
