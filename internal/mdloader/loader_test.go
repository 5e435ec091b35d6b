package mdloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thai-legal-rag/internal/chunker"
)

const sample = `---
source_file: หนังสือตอบข้อหารือ.pdf
type: ข้อหารือ กวจ.
file_id: abc123
file_url: https://drive.google.com/file/d/abc123/view
---

# เรื่อง การจัดซื้อ

## 📌 ข้อเท็จจริง
หน่วยงานขอหารือเรื่องการจัดซื้อ

## ข้อวินิจฉัย
ให้ดำเนินการตามระเบียบ
`

func TestParse_SectionsAndFrontMatter(t *testing.T) {
	l := NewLoader(chunker.NewTextChunker(1000, 0), nil)
	chunks := l.Parse("x.md", sample)

	require.Len(t, chunks, 3)
	assert.Equal(t, "# เรื่อง การจัดซื้อ", chunks[0].Text)
	assert.Equal(t, "เนื้อหา", chunks[0].Metadata.Heading)
	assert.Equal(t, "ข้อเท็จจริง", chunks[1].Metadata.Heading)
	assert.Equal(t, "หน่วยงานขอหารือเรื่องการจัดซื้อ", chunks[1].Text)
	assert.Equal(t, "ข้อวินิจฉัย", chunks[2].Metadata.Heading)

	ids := map[string]struct{}{}
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, i, c.Metadata.ChunkIndex)
		assert.Equal(t, "abc123", c.DocumentID)
		assert.Equal(t, "abc123", c.Metadata.SourceID)
		assert.Equal(t, "หนังสือตอบข้อหารือ.pdf", c.Metadata.SourceName)
		assert.Equal(t, "ข้อหารือ กวจ.", c.Metadata.Category)
		ids[c.ID] = struct{}{}
	}
	assert.Len(t, ids, 3)
}

func TestParse_NoFrontMatter(t *testing.T) {
	l := NewLoader(chunker.NewTextChunker(1000, 0), nil)
	chunks := l.Parse("note.md", "ข้อความ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "note.md", chunks[0].Metadata.SourceName)
	assert.Equal(t, "note.md", chunks[0].DocumentID)
	assert.Equal(t, DefaultCategory, chunks[0].Metadata.Category)
}

func TestParse_LawBackupFrontMatter(t *testing.T) {
	text := "---\noriginal_filename: พรบ.pdf\ndoc_type: กฎหมาย\nlaw_name: พระราชบัญญัติ\nlaw_type: พระราชบัญญัติ\nlaw_year_be: \"2560\"\nfile_id: f1\n---\n\n## หมวด ๑\nมาตรา ๑\n"
	chunks := NewLoader(chunker.NewTextChunker(1000, 0), nil).Parse("b.md", text)
	require.Len(t, chunks, 1)
	md := chunks[0].Metadata
	assert.Equal(t, "พรบ.pdf", md.SourceName)
	assert.Equal(t, "กฎหมาย", md.Category)
	assert.Equal(t, "2560", md.LawYearBE)
	assert.Equal(t, "หมวด ๑", md.Heading)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("บี"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("เอ"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("ซี"), 0o644))

	chunks, err := NewLoader(chunker.NewTextChunker(1000, 0), nil).LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "เอ", chunks[0].Text)
	assert.Equal(t, "บี", chunks[1].Text)
}
