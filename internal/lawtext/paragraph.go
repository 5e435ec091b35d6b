package lawtext

import "strings"

// SplitParagraphs splits a section into วรรค (paragraphs) with the label
// removed. Blank lines separate candidates; a block opening with a list marker
// is merged into the paragraph before it, except for trailing lines that open
// with a definite legal subject, which start a new paragraph.
func SplitParagraphs(sectionText string) []string {
	body := stripLabel(strings.TrimSpace(sectionText))
	if body == "" {
		return nil
	}

	var paragraphs []string
	for _, raw := range blankLineSplit.Split(body, -1) {
		block := strings.TrimSpace(raw)
		if block == "" {
			continue
		}
		if listItemPattern.MatchString(block) && len(paragraphs) > 0 {
			merged, tail := mergeListBlock(paragraphs[len(paragraphs)-1], block)
			paragraphs[len(paragraphs)-1] = merged
			if tail != "" {
				paragraphs = append(paragraphs, tail)
			}
			continue
		}
		paragraphs = append(paragraphs, block)
	}
	return paragraphs
}

// stripLabel drops the section label from the first line, keeping any body
// text that follows it on the same line.
func stripLabel(text string) string {
	first, rest, _ := strings.Cut(text, "\n")
	loc := sectionPattern.FindStringIndex(strings.TrimSpace(first))
	if loc == nil {
		return text
	}
	remainder := strings.TrimSpace(strings.TrimSpace(first)[loc[1]:])
	if remainder == "" {
		return strings.TrimSpace(rest)
	}
	if rest == "" {
		return remainder
	}
	return remainder + "\n" + rest
}

// mergeListBlock appends list lines to prev. The first line after the list
// that opens with a definite subject begins the tail, returned separately.
func mergeListBlock(prev, block string) (merged, tail string) {
	lines := strings.Split(block, "\n")
	var listLines, tailLines []string
	inTail := false
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if !inTail && len(listLines) > 0 && !listItemPattern.MatchString(s) && definiteSubjectPattern.MatchString(s) {
			inTail = true
		}
		if inTail {
			tailLines = append(tailLines, line)
		} else {
			listLines = append(listLines, line)
		}
	}
	merged = prev
	if len(listLines) > 0 {
		merged = prev + "\n" + strings.Join(listLines, "\n")
	}
	return merged, strings.TrimSpace(strings.Join(tailLines, "\n"))
}
