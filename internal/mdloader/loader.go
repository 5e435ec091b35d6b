// Package mdloader indexes Markdown files that carry YAML front matter,
// such as OCR output from earlier pipelines and the extractor's own backups.
package mdloader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"thai-legal-rag/internal/chunker"
	"thai-legal-rag/internal/domain"
)

// DefaultCategory labels files whose front matter has no type.
const DefaultCategory = "ข้อหารือ กวจ."

const defaultHeading = "เนื้อหา"

var (
	frontMatterPattern = regexp.MustCompile(`(?s)^---[ \t]*\n(.*?)\n---[ \t]*\n`)
	headingPattern     = regexp.MustCompile(`(?m)^##[^#].*$`)
	headingNoise       = regexp.MustCompile(`[^\x{0E00}-\x{0E7F}\w\s./\-()]`)
)

// Loader splits Markdown bodies by ## heading, then by size.
type Loader struct {
	splitter *chunker.TextChunker
	log      *zap.Logger
}

func NewLoader(splitter *chunker.TextChunker, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{splitter: splitter, log: log}
}

// LoadDir loads every *.md file directly inside dir, in name order.
func (l *Loader) LoadDir(dir string) ([]domain.Chunk, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	var all []domain.Chunk
	for _, p := range paths {
		chunks, err := l.LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}

func (l *Loader) LoadFile(path string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	chunks := l.Parse(filepath.Base(path), string(data))
	l.log.Debug("markdown loaded", zap.String("path", path), zap.Int("chunks", len(chunks)))
	return chunks, nil
}

// Parse chunks one Markdown document. Front matter fields are copied into
// every chunk; malformed front matter is ignored.
func (l *Loader) Parse(name, text string) []domain.Chunk {
	fm, body := l.splitFrontMatter(name, text)
	base := baseMetadata(fm, name)
	docID := base.SourceID
	if docID == "" {
		docID = name
	}

	var chunks []domain.Chunk
	add := func(heading, part string) {
		part = strings.TrimSpace(part)
		if part == "" {
			return
		}
		meta := base
		meta.Heading = heading
		for _, c := range l.splitter.Split(docID, part, meta) {
			idx := len(chunks)
			c.ID = chunker.ChunkID(docID, idx)
			c.Index = idx
			c.Metadata.ChunkIndex = idx
			chunks = append(chunks, c)
		}
	}

	heading := defaultHeading
	last := 0
	for _, loc := range headingPattern.FindAllStringIndex(body, -1) {
		add(heading, body[last:loc[0]])
		heading = cleanHeading(body[loc[0]:loc[1]])
		last = loc[1]
	}
	add(heading, body[last:])
	return chunks
}

func (l *Loader) splitFrontMatter(name, text string) (map[string]interface{}, string) {
	m := frontMatterPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return map[string]interface{}{}, text
	}
	fm := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(text[m[2]:m[3]]), &fm); err != nil || fm == nil {
		l.log.Warn("ignoring malformed front matter", zap.String("file", name), zap.Error(err))
		fm = map[string]interface{}{}
	}
	return fm, text[m[1]:]
}

func baseMetadata(fm map[string]interface{}, name string) domain.ChunkMetadata {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := fm[k]; ok && v != nil {
				if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
					return s
				}
			}
		}
		return ""
	}
	md := domain.ChunkMetadata{
		SourceID:     str("file_id"),
		SourceName:   str("source_file", "original_filename"),
		SourceURL:    str("file_url"),
		Category:     str("type", "doc_type"),
		DocType:      str("doc_type", "type"),
		LawName:      str("law_name"),
		LawShortName: str("law_short_name"),
		LawType:      domain.LawType(str("law_type")),
		LawYearBE:    str("law_year_be"),
	}
	if md.SourceName == "" {
		md.SourceName = name
	}
	if md.Category == "" {
		md.Category = DefaultCategory
	}
	if md.DocType == "" {
		md.DocType = md.Category
	}
	return md
}

func cleanHeading(line string) string {
	h := strings.TrimLeft(line, "#")
	h = headingNoise.ReplaceAllString(h, "")
	return strings.TrimSpace(h)
}
