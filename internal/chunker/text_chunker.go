package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"thai-legal-rag/internal/domain"
)

// TextChunker packs whitespace-delimited segments into chunks of about
// chunkSize runes, carrying up to overlap runes of trailing segments into the
// next chunk. Thai separates sentences and clauses with spaces, so segments
// never cut a word.
type TextChunker struct {
	chunkSize int
	overlap   int
	splitter  *regexp.Regexp
}

func NewTextChunker(chunkSize, overlap int) *TextChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &TextChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		splitter:  regexp.MustCompile(`\S+\s*`),
	}
}

// Split chunks text. base is copied into every chunk's metadata with
// ChunkIndex set; ids derive from documentID and the index.
func (c *TextChunker) Split(documentID, text string, base domain.ChunkMetadata) []domain.Chunk {
	segments := c.splitter.FindAllString(text, -1)
	if len(segments) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	emit := func(parts []string) {
		body := strings.TrimSpace(strings.Join(parts, ""))
		if body == "" {
			return
		}
		idx := len(chunks)
		meta := base
		meta.ChunkIndex = idx
		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(documentID, idx),
			DocumentID: documentID,
			Text:       body,
			Index:      idx,
			Metadata:   meta,
		})
	}

	var current []string
	currentLen := 0
	for _, seg := range segments {
		n := utf8.RuneCountInString(seg)
		if currentLen+n > c.chunkSize && len(current) > 0 {
			emit(current)
			current, currentLen = c.tail(current)
		}
		current = append(current, seg)
		currentLen += n
	}
	emit(current)
	return chunks
}

// tail keeps the trailing segments that fit in the overlap budget.
func (c *TextChunker) tail(segments []string) ([]string, int) {
	if c.overlap == 0 {
		return nil, 0
	}
	total := 0
	start := len(segments)
	for i := len(segments) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(segments[i])
		if total+n > c.overlap {
			break
		}
		total += n
		start = i
	}
	kept := make([]string, len(segments)-start)
	copy(kept, segments[start:])
	return kept, total
}
