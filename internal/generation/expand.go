package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"thai-legal-rag/internal/domain"
)

const expandPromptTemplate = `คุณเป็นผู้เชี่ยวชาญกฎหมายจัดซื้อจัดจ้างภาครัฐไทย

จากคำถามต่อไปนี้ ให้สร้างคำสำคัญที่เกี่ยวข้องสำหรับการค้นหาเอกสารราชการ:
คำถาม: %s

ให้ตอบเป็น JSON array ของ string เท่านั้น เช่น:
["คำ1", "คำ2", "คำ3"]

รวมถึง:
- ศัพท์เทคนิคทางกฎหมาย (พ.ร.บ., ระเบียบ, หนังสือเวียน)
- ชื่อหน่วยงาน (กรมบัญชีกลาง, ศาลปกครอง, สำนักงานอัยการสูงสุด)
- ขั้นตอนและกระบวนการที่เกี่ยวข้อง
ตอบ JSON เท่านั้น ห้ามมีข้อความอื่น:`

// Expander asks a Generator for extra search keywords.
type Expander struct {
	gen domain.Generator
	log *zap.Logger
}

func NewExpander(gen domain.Generator, log *zap.Logger) *Expander {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expander{gen: gen, log: log}
}

// Expand returns query followed by the generated keywords. Any failure
// yields just [query].
func (e *Expander) Expand(ctx context.Context, query string) []string {
	if e == nil || e.gen == nil {
		return []string{query}
	}
	raw, err := e.gen.Generate(ctx, "", fmt.Sprintf(expandPromptTemplate, query))
	if err != nil {
		e.log.Warn("query expansion failed", zap.Error(err))
		return []string{query}
	}
	keywords, err := ParseKeywords(raw)
	if err != nil {
		e.log.Warn("query expansion reply not a JSON list", zap.Error(err))
		return []string{query}
	}
	out := []string{query}
	seen := map[string]struct{}{query: {}}
	for _, k := range keywords {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	e.log.Debug("query expanded", zap.String("query", query), zap.Int("terms", len(out)))
	return out
}

// ParseKeywords decodes a JSON array, optionally wrapped in a ``` fence.
// Non-string and blank elements are dropped.
func ParseKeywords(raw string) ([]string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if i := strings.Index(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	var items []interface{}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out, nil
}
