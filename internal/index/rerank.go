package index

import (
	"sort"
	"strings"

	"thai-legal-rag/internal/domain"
)

// SourceWeights scale each source's normalised scores. Text hits are broader
// than vector hits and weigh slightly less. Unknown sources weigh 1.
var SourceWeights = map[string]float64{
	"vector":  1.0,
	"text":    0.9,
	"lexical": 0.8,
}

const dedupPrefixRunes = 200

// Rerank fuses results from several sources: scores are divided by the
// best score of their source, weighted, sorted, de-duplicated on the first
// 200 runes of text and cut to topK. Input is not modified.
func Rerank(results []domain.SearchResult, topK int) []domain.SearchResult {
	if topK <= 0 {
		topK = 5
	}
	best := make(map[string]float64)
	for _, r := range results {
		if r.Score > best[r.Source] {
			best[r.Source] = r.Score
		}
	}
	fused := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		top := best[r.Source]
		if top <= 0 {
			top = 1
		}
		w, ok := SourceWeights[r.Source]
		if !ok {
			w = 1
		}
		r.Score = r.Score / top * w
		fused = append(fused, r)
	}
	sort.SliceStable(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })

	seen := make(map[string]struct{}, len(fused))
	out := make([]domain.SearchResult, 0, topK)
	for _, r := range fused {
		key := dedupKey(r.Chunk.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
		if len(out) == topK {
			break
		}
	}
	return out
}

func dedupKey(text string) string {
	r := []rune(text)
	if len(r) > dedupPrefixRunes {
		r = r[:dedupPrefixRunes]
	}
	return strings.TrimSpace(string(r))
}
