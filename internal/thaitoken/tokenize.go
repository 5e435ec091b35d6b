// Package thaitoken splits mixed Thai/Latin text into index terms.
// Thai is written without spaces between words, so Thai runs become
// overlapping character bigrams; other scripts are split into lowercase words.
package thaitoken

import (
	"regexp"
	"strings"
	"unicode"

	"thai-legal-rag/internal/thainum"
)

var runPattern = regexp.MustCompile(`\p{Thai}+|[\p{L}\p{N}]+(?:['’]\p{L}+)*`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Terms returns the index terms of text in order. Thai digits are read as Arabic.
func Terms(text string) []string {
	lower := strings.ToLower(thainum.ToArabic(text))
	var out []string
	for _, run := range runPattern.FindAllString(lower, -1) {
		if isThaiRun(run) {
			out = append(out, Bigrams(run)...)
			continue
		}
		if _, stop := stopwords[run]; stop {
			continue
		}
		out = append(out, run)
	}
	return out
}

// Bigrams returns the overlapping two-rune substrings of run.
// A single-rune run is returned as is.
func Bigrams(run string) []string {
	r := []rune(run)
	if len(r) < 2 {
		return []string{run}
	}
	out := make([]string, 0, len(r)-1)
	for i := 0; i+1 < len(r); i++ {
		out = append(out, string(r[i:i+2]))
	}
	return out
}

// TermSet returns the distinct terms of text.
func TermSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Terms(text) {
		set[t] = struct{}{}
	}
	return set
}

func isThaiRun(s string) bool {
	for _, r := range s {
		return unicode.Is(unicode.Thai, r)
	}
	return false
}
