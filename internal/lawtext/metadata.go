package lawtext

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/thainum"
)

const (
	typeScanRunes    = 300
	headScanRunes    = 3000
	procurementRunes = 1000
	maxTitleLines    = 4
	procurementKw    = "จัดซื้อ"
	procurementFull  = "จัดซื้อจัดจ้าง"
)

// Metadata is the law identity inferred from filename and document head.
type Metadata struct {
	LawName      string
	LawShortName string
	LawType      domain.LawType
	LawYearBE    string
}

// textTypeOrder is the priority order for keyword detection in text.
var textTypeOrder = []domain.LawType{
	domain.LawTypeAct,
	domain.LawTypeRegulation,
	domain.LawTypeMinisterialRule,
	domain.LawTypeAnnouncement,
}

// shortNameTable maps a phrase in the law name to its citation form (year appended).
var shortNameTable = []struct {
	phrase string
	short  string
}{
	{"พระราชบัญญัติการจัดซื้อจัดจ้าง", "พ.ร.บ.จัดซื้อจัดจ้างฯ"},
	{"ระเบียบกระทรวงการคลังว่าด้วยการจัดซื้อจัดจ้าง", "ระเบียบฯ จัดซื้อจัดจ้าง"},
}

// DetectMetadata infers law name, short name, type and BE year. It never fails:
// missing signals yield empty strings or domain.LawTypeUnknown.
func DetectMetadata(text, filename string) Metadata {
	stem := fileStem(filename)
	lowerStem := strings.ToLower(stem)

	lawType, fromFilename := typeFromFilename(lowerStem)
	if !fromFilename {
		lawType = typeFromText(headRunes(text, typeScanRunes))
	}

	head := headRunes(text, headScanRunes)
	year := detectYear(head)

	name := detectName(head, lawType)
	if name == "" {
		name = strings.TrimSpace(strings.NewReplacer("+", " ", "-", " ").Replace(stem))
	}

	meta := Metadata{LawName: name, LawType: lawType, LawYearBE: year}
	meta.LawShortName = shortName(meta, lowerStem, fromFilename, text)
	return meta
}

func typeFromFilename(stem string) (domain.LawType, bool) {
	switch {
	// Act before Announcement: Act filenames often carry "ประกาศราชกิจจา" as the venue.
	case strings.Contains(stem, "พรบ") || strings.Contains(stem, "พ.ร.บ") || strings.Contains(stem, string(domain.LawTypeAct)):
		return domain.LawTypeAct, true
	case strings.Contains(stem, string(domain.LawTypeRegulation)):
		return domain.LawTypeRegulation, true
	case strings.Contains(stem, string(domain.LawTypeMinisterialRule)):
		return domain.LawTypeMinisterialRule, true
	case strings.Contains(stem, string(domain.LawTypeAnnouncement)) && !strings.Contains(stem, "ราชกิจจา"):
		return domain.LawTypeAnnouncement, true
	}
	return domain.LawTypeUnknown, false
}

func typeFromText(head string) domain.LawType {
	for _, t := range textTypeOrder {
		if strings.Contains(head, string(t)) {
			return t
		}
	}
	return domain.LawTypeUnknown
}

func detectYear(head string) string {
	m := yearPattern.FindStringSubmatch(head)
	if m == nil {
		return ""
	}
	return thainum.ToArabic(m[1])
}

// detectName takes the first line naming the law type and absorbs the title's
// continuation lines up to and including the พ.ศ. line.
func detectName(head string, lawType domain.LawType) string {
	lines := strings.Split(head, "\n")
	for i, line := range lines {
		first := strings.TrimSpace(line)
		if !strings.Contains(first, string(lawType)) {
			continue
		}
		parts := []string{first}
		if !strings.Contains(first, kwYear) {
			for j := i + 1; j < len(lines) && j <= i+maxTitleLines; j++ {
				next := strings.TrimSpace(lines[j])
				if next == "" || structuralPrefix.MatchString(next) {
					break
				}
				parts = append(parts, next)
				if strings.Contains(next, kwYear) {
					break
				}
			}
		}
		return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	}
	return ""
}

func shortName(meta Metadata, lowerStem string, fromFilename bool, text string) string {
	suffix := ""
	if meta.LawYearBE != "" {
		suffix = " " + meta.LawYearBE
	}
	if fromFilename {
		switch meta.LawType {
		case domain.LawTypeAct:
			if strings.Contains(lowerStem, procurementKw) || strings.Contains(meta.LawName, procurementFull) {
				return "พ.ร.บ.จัดซื้อจัดจ้างฯ" + suffix
			}
			return "พ.ร.บ.ฯ" + suffix
		case domain.LawTypeRegulation:
			if strings.Contains(lowerStem, procurementKw) ||
				strings.Contains(meta.LawName, procurementFull) ||
				strings.Contains(headRunes(text, procurementRunes), procurementFull) {
				return "ระเบียบฯ จัดซื้อจัดจ้าง" + suffix
			}
			return "ระเบียบฯ" + suffix
		case domain.LawTypeMinisterialRule:
			return "กฎกระทรวงฯ" + suffix
		}
	}
	for _, entry := range shortNameTable {
		if strings.Contains(meta.LawName, entry.phrase) {
			return entry.short + suffix
		}
	}
	if utf8.RuneCountInString(meta.LawName) < 8 {
		return string(meta.LawType) + "ฯ" + suffix
	}
	return meta.LawName
}

func fileStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// headRunes returns at most n runes from the start of s.
func headRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
