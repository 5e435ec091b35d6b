package lawtext

import (
	"strings"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/thainum"
)

// LineKind tags a classified line.
type LineKind int

const (
	LinePlain LineKind = iota
	LinePart
	LineChapter
	LineSection
)

func (k LineKind) String() string {
	switch k {
	case LinePart:
		return "part"
	case LineChapter:
		return "chapter"
	case LineSection:
		return "section"
	default:
		return "plain"
	}
}

// LineClass is the result of ClassifyLine. Label is the heading line for
// parts and chapters and the keyword plus numeral for sections. Number is
// set for sections only, in Arabic digits.
type LineClass struct {
	Kind   LineKind
	Label  string
	Number string
}

// ClassifyLine tests a line against the Part, Chapter and Section markers.
// Leading and trailing whitespace is ignored.
func ClassifyLine(line string) LineClass {
	s := strings.TrimSpace(line)
	if s == "" {
		return LineClass{Kind: LinePlain}
	}
	if partPattern.MatchString(s) {
		return LineClass{Kind: LinePart, Label: s}
	}
	if chapterPattern.MatchString(s) {
		return LineClass{Kind: LineChapter, Label: s}
	}
	if m := sectionPattern.FindStringSubmatch(s); m != nil {
		return LineClass{
			Kind:   LineSection,
			Label:  strings.Join(strings.Fields(m[1]), " "),
			Number: thainum.ToArabic(m[2]),
		}
	}
	return LineClass{Kind: LinePlain}
}

// ParseSections walks preprocessed text line by line. Each section spans from
// its marker to the line before the next section marker, and carries the most
// recent part and chapter headings seen at or before its marker.
func ParseSections(text string) []domain.Section {
	lines := strings.Split(text, "\n")

	type start struct {
		line    int
		class   LineClass
		part    string
		chapter string
	}
	var starts []start
	part, chapter := "", ""
	for i, line := range lines {
		c := ClassifyLine(line)
		switch c.Kind {
		case LinePart:
			part = c.Label
		case LineChapter:
			chapter = c.Label
		case LineSection:
			starts = append(starts, start{line: i, class: c, part: part, chapter: chapter})
		}
	}

	sections := make([]domain.Section, 0, len(starts))
	for i, st := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1].line
		}
		body := strings.TrimSpace(strings.Join(lines[st.line:end], "\n"))
		sections = append(sections, domain.Section{
			Number:     st.class.Number,
			Label:      st.class.Label,
			Text:       body,
			Part:       st.part,
			Chapter:    st.chapter,
			Paragraphs: SplitParagraphs(body),
			Line:       st.line,
		})
	}
	return sections
}
