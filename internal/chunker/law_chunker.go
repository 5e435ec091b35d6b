// Package chunker turns parsed documents into retrieval chunks. LawChunker
// follows the statute hierarchy; TextChunker packs free text by size.
package chunker

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/logger"
)

const (
	DefaultMaxChars       = 800
	DefaultSplitThreshold = 1000
)

// chunkNamespace seeds deterministic chunk ids.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lawrag/chunk"))

// ChunkID is the stable id of the index-th chunk of a document.
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+":"+strconv.Itoa(index))).String()
}

// LawChunker groups short sections by chapter and splits long sections into
// one chunk per paragraph. Lengths are counted in runes.
type LawChunker struct {
	maxChars       int
	splitThreshold int
	log            *zap.Logger
}

// LawOption configures a LawChunker.
type LawOption func(*LawChunker)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) LawOption {
	return func(c *LawChunker) { c.log = logger.OrNop(l) }
}

// NewLawChunker uses the defaults for non-positive sizes.
func NewLawChunker(maxChars, splitThreshold int, opts ...LawOption) *LawChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if splitThreshold <= 0 {
		splitThreshold = DefaultSplitThreshold
	}
	c := &LawChunker{maxChars: maxChars, splitThreshold: splitThreshold, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk walks sections in order. chunk_index runs 0..n-1 with no gaps.
func (c *LawChunker) Chunk(doc *domain.LawDocument) []domain.Chunk {
	if doc == nil || len(doc.Sections) == 0 {
		name := ""
		if doc != nil {
			name = doc.Filename
		}
		c.log.Warn("no sections to chunk", zap.String("filename", name))
		return nil
	}

	e := &emitter{doc: doc}
	var group []domain.Section
	groupChars := 0

	flush := func() {
		if len(group) == 0 {
			return
		}
		e.group(group)
		group = nil
		groupChars = 0
	}

	for _, sec := range doc.Sections {
		n := utf8.RuneCountInString(sec.Text)
		if n > c.splitThreshold && len(sec.Paragraphs) > 1 {
			flush()
			e.paragraphs(sec)
			continue
		}
		if len(group) > 0 && (sec.Chapter != group[0].Chapter || groupChars+n > c.maxChars) {
			flush()
		}
		group = append(group, sec)
		groupChars += n
	}
	flush()

	c.log.Info("chunked law",
		zap.String("filename", doc.Filename),
		zap.Int("sections", len(doc.Sections)),
		zap.Int("chunks", len(e.chunks)),
	)
	return e.chunks
}

// emitter assigns sequential chunk indexes.
type emitter struct {
	doc    *domain.LawDocument
	chunks []domain.Chunk
}

func (e *emitter) docID() string {
	if e.doc.SourceID != "" {
		return e.doc.SourceID
	}
	return e.doc.Filename
}

func (e *emitter) baseMetadata(part, chapter string) domain.ChunkMetadata {
	return domain.ChunkMetadata{
		DocType:      domain.DocTypeLaw,
		Category:     domain.DocTypeLaw,
		LawName:      e.doc.LawName,
		LawShortName: e.doc.LawShortName,
		LawType:      e.doc.LawType,
		LawYearBE:    e.doc.LawYearBE,
		Part:         part,
		Chapter:      chapter,
		SourceID:     e.doc.SourceID,
		SourceName:   e.doc.Filename,
		SourceURL:    e.doc.SourceURL(),
	}
}

func (e *emitter) emit(label, body string, meta domain.ChunkMetadata) {
	idx := len(e.chunks)
	meta.ChunkIndex = idx
	meta.Heading = label
	header := e.doc.ContextHeader(meta.Part, meta.Chapter, label)
	e.chunks = append(e.chunks, domain.Chunk{
		ID:         ChunkID(e.docID(), idx),
		DocumentID: e.docID(),
		Text:       header + "\n\n" + body,
		Index:      idx,
		Metadata:   meta,
	})
}

func (e *emitter) group(secs []domain.Section) {
	first, last := secs[0], secs[len(secs)-1]
	label := first.Label
	if len(secs) > 1 {
		label = first.Label + " - " + last.Label
	}

	numbers := make([]string, len(secs))
	texts := make([]string, len(secs))
	for i, s := range secs {
		numbers[i] = s.Number
		texts[i] = s.Text
	}

	meta := e.baseMetadata(first.Part, first.Chapter)
	meta.SectionNumbers = numbers
	meta.FirstSection = first.Number
	meta.LastSection = last.Number
	e.emit(label, strings.Join(texts, "\n\n"), meta)
}

func (e *emitter) paragraphs(sec domain.Section) {
	total := len(sec.Paragraphs)
	for i, p := range sec.Paragraphs {
		meta := e.baseMetadata(sec.Part, sec.Chapter)
		meta.Section = sec.Number
		meta.Paragraph = i + 1
		meta.TotalParagraphs = total
		e.emit(fmt.Sprintf("%s วรรค %d", sec.Label, i+1), sec.Label+"\n"+p, meta)
	}
}
