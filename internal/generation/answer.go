// Package generation turns retrieved chunks into a cited answer and widens
// user questions into search keywords.
package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"thai-legal-rag/internal/domain"
)

// SystemPrompt is the legal-officer persona for answers.
const SystemPrompt = `คุณคือนิติกรชำนาญการพิเศษ ด้านกฎหมายจัดซื้อจัดจ้างภาครัฐไทย
มีความเชี่ยวชาญใน:
- พระราชบัญญัติการจัดซื้อจัดจ้างและการบริหารพัสดุภาครัฐ พ.ศ. 2560
- ระเบียบกระทรวงการคลังว่าด้วยการจัดซื้อจัดจ้างและการบริหารพัสดุภาครัฐ พ.ศ. 2560
- แนวทาง/หนังสือเวียนจากกรมบัญชีกลาง, ศาลปกครอง, สำนักงานอัยการสูงสุด

หลักการตอบ:
1. อ้างอิงข้อกฎหมาย/ระเบียบที่เกี่ยวข้องทุกครั้ง
2. หากไม่มีข้อมูลเพียงพอ ให้บอกตรงๆ ห้ามเดา
3. ตอบภาษาไทยที่ชัดเจน อ่านง่าย
4. สรุปขั้นตอนปฏิบัติในตอนท้ายเสมอ
5. อ้างอิงแหล่งที่มา (ชื่อเอกสาร) ให้ครบถ้วน`

const userPromptTemplate = `คำถาม: %s

เอกสารอ้างอิงที่เกี่ยวข้อง:
%s

กรุณาตอบคำถามโดยอ้างอิงเอกสารข้างต้น`

const noContextAnswer = "ไม่พบเอกสารที่เกี่ยวข้องกับคำถามนี้"

// Source is one cited document.
type Source struct {
	Name     string `json:"name"`
	SourceID string `json:"source_id,omitempty"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category,omitempty"`
}

// Answer is a generated reply with its citations.
type Answer struct {
	Text       string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Model      string   `json:"model"`
	ChunksUsed int      `json:"chunks_used"`
}

// Answerer writes answers with a Generator. Without one it falls back to an
// extractive summary of the retrieved text.
type Answerer struct {
	gen          domain.Generator
	summarizer   domain.Summarizer
	maxSentences int
	log          *zap.Logger
}

type AnswerOption func(*Answerer)

func WithLogger(l *zap.Logger) AnswerOption {
	return func(a *Answerer) {
		if l != nil {
			a.log = l
		}
	}
}

// WithFallback sets the summarizer used when no generator is configured.
func WithFallback(s domain.Summarizer, maxSentences int) AnswerOption {
	return func(a *Answerer) {
		a.summarizer = s
		a.maxSentences = maxSentences
	}
}

func NewAnswerer(gen domain.Generator, opts ...AnswerOption) *Answerer {
	a := &Answerer{gen: gen, log: zap.NewNop(), maxSentences: 5}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer replies to question from results, in rank order.
func (a *Answerer) Answer(ctx context.Context, question string, results []domain.SearchResult) (Answer, error) {
	ans := Answer{Sources: Sources(results), ChunksUsed: len(results)}
	if len(results) == 0 {
		ans.Text = noContextAnswer
		return ans, nil
	}
	if a.gen == nil {
		ans.Model = "extractive"
		if a.summarizer == nil {
			return ans, fmt.Errorf("no generator or summarizer configured")
		}
		texts := make([]string, len(results))
		for i, r := range results {
			texts[i] = r.Chunk.Text
		}
		text, err := a.summarizer.Summarize(strings.Join(texts, "\n"), a.maxSentences)
		if err != nil {
			return ans, fmt.Errorf("summarize context: %w", err)
		}
		ans.Text = text
		return ans, nil
	}

	ans.Model = a.gen.Model()
	prompt := fmt.Sprintf(userPromptTemplate, question, BuildContext(results))
	text, err := a.gen.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		a.log.Error("answer generation failed", zap.Error(err))
		return ans, fmt.Errorf("generate answer: %w", err)
	}
	ans.Text = text
	return ans, nil
}

// BuildContext numbers the chunks from 1 as "[i] **source** (category)"
// blocks separated by horizontal rules.
func BuildContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%d] **%s** (%s)\n%s", i+1, sourceName(r.Chunk), category(r.Chunk), r.Chunk.Text)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Sources lists each source name once, in first-seen order.
func Sources(results []domain.SearchResult) []Source {
	out := []Source{}
	seen := make(map[string]struct{})
	for _, r := range results {
		md := r.Chunk.Metadata
		if md.SourceName == "" {
			continue
		}
		if _, dup := seen[md.SourceName]; dup {
			continue
		}
		seen[md.SourceName] = struct{}{}
		out = append(out, Source{Name: md.SourceName, SourceID: md.SourceID, URL: md.SourceURL, Category: category(r.Chunk)})
	}
	return out
}

func sourceName(c domain.Chunk) string {
	if c.Metadata.SourceName != "" {
		return c.Metadata.SourceName
	}
	if c.DocumentID != "" {
		return c.DocumentID
	}
	return "unknown"
}

func category(c domain.Chunk) string {
	if c.Metadata.Category != "" {
		return c.Metadata.Category
	}
	return c.Metadata.DocType
}
