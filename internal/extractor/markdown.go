package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"thai-legal-rag/internal/domain"
)

// gazetteSource is the publication every law backup cites.
const gazetteSource = "ราชกิจจานุเบกษา"

// frontMatter is the backup header; field order is the rendered order.
type frontMatter struct {
	OriginalFilename string `yaml:"original_filename"`
	DocType          string `yaml:"doc_type"`
	LawName          string `yaml:"law_name"`
	LawShortName     string `yaml:"law_short_name"`
	LawType          string `yaml:"law_type"`
	LawYearBE        string `yaml:"law_year_be"`
	Source           string `yaml:"source"`
	FileID           string `yaml:"file_id"`
	FileURL          string `yaml:"file_url"`
	TotalSections    int    `yaml:"total_sections"`
	OCREngine        string `yaml:"ocr_engine"`
	OCRDate          string `yaml:"ocr_date"`
	Status           string `yaml:"status"`
}

type sectionFrontMatter struct {
	LawName      string `yaml:"law_name"`
	LawShortName string `yaml:"law_short_name"`
	Section      string `yaml:"section"`
	Label        string `yaml:"label"`
	Part         string `yaml:"part,omitempty"`
	Chapter      string `yaml:"chapter,omitempty"`
	FileID       string `yaml:"file_id"`
	FileURL      string `yaml:"file_url"`
}

// RenderMarkdown renders the human-readable backup of doc.
func RenderMarkdown(doc *domain.LawDocument, date time.Time) (string, error) {
	fm := frontMatter{
		OriginalFilename: doc.Filename,
		DocType:          domain.DocTypeLaw,
		LawName:          doc.LawName,
		LawShortName:     doc.LawShortName,
		LawType:          string(doc.LawType),
		LawYearBE:        doc.LawYearBE,
		Source:           gazetteSource,
		FileID:           doc.SourceID,
		FileURL:          doc.SourceURL(),
		TotalSections:    doc.TotalSections,
		OCREngine:        doc.ExtractionEngine,
		OCRDate:          date.UTC().Format("2006-01-02"),
		Status:           "active",
	}

	var b strings.Builder
	if err := writeFrontMatter(&b, fm); err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\n# %s\n\n", doc.LawName)

	part, chapter := "", ""
	for _, sec := range doc.Sections {
		if sec.Part != part {
			part = sec.Part
			if part != "" {
				fmt.Fprintf(&b, "\n## %s\n\n", part)
			}
		}
		if sec.Chapter != chapter {
			chapter = sec.Chapter
			if chapter != "" {
				fmt.Fprintf(&b, "\n### %s\n\n", chapter)
			}
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", doc.ContextHeader(sec.Part, sec.Chapter, sec.Label), sec.Text)
	}
	return b.String(), nil
}

// WriteMarkdown writes <dir>/<stem>.md and returns its path.
func WriteMarkdown(dir string, doc *domain.LawDocument, date time.Time) (string, error) {
	md, err := RenderMarkdown(doc, date)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fileStem(doc.Filename)+".md")
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	return path, nil
}

// WriteSectionFiles writes <dir>/<stem>/<keyword>_<number>.md for every
// section. Repeated numbers get _2, _3 suffixes. Returns the written paths.
func WriteSectionFiles(dir string, doc *domain.LawDocument) ([]string, error) {
	outDir := filepath.Join(dir, fileStem(doc.Filename))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	paths := make([]string, 0, len(doc.Sections))
	for _, sec := range doc.Sections {
		name := SectionFileName(sec)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}

		var b strings.Builder
		err := writeFrontMatter(&b, sectionFrontMatter{
			LawName:      doc.LawName,
			LawShortName: doc.LawShortName,
			Section:      sec.Number,
			Label:        sec.Label,
			Part:         sec.Part,
			Chapter:      sec.Chapter,
			FileID:       doc.SourceID,
			FileURL:      doc.SourceURL(),
		})
		if err != nil {
			return paths, err
		}
		fmt.Fprintf(&b, "\n%s\n\n%s\n", doc.ContextHeader(sec.Part, sec.Chapter, sec.Label), sec.Text)

		path := filepath.Join(outDir, name+".md")
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return paths, fmt.Errorf("write section %s: %w", sec.Label, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SectionFileName is "<keyword>_<number>" with "/" in sub-indexed numbers
// replaced by "_", e.g. มาตรา_60_1.
func SectionFileName(sec domain.Section) string {
	keyword, _, _ := strings.Cut(sec.Label, " ")
	return keyword + "_" + strings.ReplaceAll(sec.Number, "/", "_")
}

func writeFrontMatter(b *strings.Builder, v interface{}) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	b.WriteString("---\n")
	b.Write(buf.Bytes())
	b.WriteString("---\n")
	return nil
}

func fileStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
