package lawtext

import "strings"

// StripPageStamps removes Royal Gazette page stamps and collapses the blank
// runs they leave behind to a single blank line.
func StripPageStamps(text string) string {
	text = pageStampPattern.ReplaceAllString(text, "\n")
	return blankRunPattern.ReplaceAllString(text, "\n\n")
}

// NormalizeSectionHeaders rejoins a มาตรา/ข้อ keyword with a numeral the PDF
// placed on the following line.
func NormalizeSectionHeaders(text string) string {
	return splitHeaderPattern.ReplaceAllString(text, "${1} ${2}")
}

// Preprocess runs page-stamp removal then header normalization.
func Preprocess(text string) string {
	return NormalizeSectionHeaders(StripPageStamps(text))
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(text string) string {
	return strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
}
