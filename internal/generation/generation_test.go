package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/summarizer"
)

type fakeGen struct {
	reply  string
	err    error
	system string
	prompt string
}

func (f *fakeGen) Model() string { return "fake-model" }

func (f *fakeGen) Generate(_ context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	return f.reply, f.err
}

func result(name, category, text string) domain.SearchResult {
	return domain.SearchResult{Chunk: domain.Chunk{Text: text, Metadata: domain.ChunkMetadata{
		SourceName: name, SourceID: name + "-id", Category: category,
	}}}
}

func TestBuildContext(t *testing.T) {
	got := BuildContext([]domain.SearchResult{
		result("a.pdf", "กฎหมาย", "มาตรา ๑"),
		result("b.md", "ข้อหารือ", "ข้อ ๒"),
	})
	assert.Equal(t, "[1] **a.pdf** (กฎหมาย)\nมาตรา ๑\n\n---\n\n[2] **b.md** (ข้อหารือ)\nข้อ ๒", got)
}

func TestSources_Unique(t *testing.T) {
	got := Sources([]domain.SearchResult{
		result("a.pdf", "กฎหมาย", "x"),
		result("a.pdf", "กฎหมาย", "y"),
		result("", "", "z"),
		result("b.md", "ข้อหารือ", "w"),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "a.pdf", got[0].Name)
	assert.Equal(t, "a.pdf-id", got[0].SourceID)
	assert.Equal(t, "b.md", got[1].Name)
}

func TestAnswer_UsesGenerator(t *testing.T) {
	gen := &fakeGen{reply: "ตอบ"}
	ans, err := NewAnswerer(gen).Answer(context.Background(), "ถาม?", []domain.SearchResult{result("a.pdf", "กฎหมาย", "มาตรา ๑")})
	require.NoError(t, err)
	assert.Equal(t, "ตอบ", ans.Text)
	assert.Equal(t, "fake-model", ans.Model)
	assert.Equal(t, 1, ans.ChunksUsed)
	assert.Equal(t, SystemPrompt, gen.system)
	assert.Contains(t, gen.prompt, "คำถาม: ถาม?")
	assert.Contains(t, gen.prompt, "[1] **a.pdf** (กฎหมาย)")
}

func TestAnswer_GeneratorError(t *testing.T) {
	gen := &fakeGen{err: errors.New("boom")}
	_, err := NewAnswerer(gen).Answer(context.Background(), "q", []domain.SearchResult{result("a", "", "x")})
	assert.Error(t, err)
}

func TestAnswer_NoResults(t *testing.T) {
	gen := &fakeGen{reply: "unused"}
	ans, err := NewAnswerer(gen).Answer(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, noContextAnswer, ans.Text)
	assert.Empty(t, gen.prompt)
}

func TestAnswer_ExtractiveFallback(t *testing.T) {
	a := NewAnswerer(nil, WithFallback(summarizer.NewFrequencySummarizer(), 1))
	ans, err := a.Answer(context.Background(), "q", []domain.SearchResult{result("a", "", "มาตรา ๑ ใช้บังคับ")})
	require.NoError(t, err)
	assert.Equal(t, "extractive", ans.Model)
	assert.Equal(t, "มาตรา ๑ ใช้บังคับ", ans.Text)
}

func TestParseKeywords(t *testing.T) {
	got, err := ParseKeywords("```json\n[\"พ.ร.บ.\", 3, \" ระเบียบ \", \"\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"พ.ร.บ.", "ระเบียบ"}, got)

	_, err = ParseKeywords("not json")
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	e := NewExpander(&fakeGen{reply: `["วิธีเฉพาะเจาะจง", "q"]`}, nil)
	assert.Equal(t, []string{"q", "วิธีเฉพาะเจาะจง"}, e.Expand(context.Background(), "q"))
}

func TestExpand_FallsBack(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, []string{"q"}, NewExpander(&fakeGen{err: errors.New("x")}, nil).Expand(ctx, "q"))
	assert.Equal(t, []string{"q"}, NewExpander(&fakeGen{reply: "nope"}, nil).Expand(ctx, "q"))
	assert.Equal(t, []string{"q"}, NewExpander(nil, nil).Expand(ctx, "q"))
}
