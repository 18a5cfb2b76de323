package index

import (
	"regexp"
	"strings"
)

// wordRE extracts word tokens: runs of letters, digits and apostrophes.
// Punctuation is dropped, whitespace splits. Matches against lowercased input.
var wordRE = regexp.MustCompile(`[a-z0-9']+`)

// Tokenize lowercases text, strips punctuation and splits on word
// boundaries. Stop words are deliberately not removed so results stay simple
// and reproducible.
func Tokenize(text string) []string {
	return wordRE.FindAllString(strings.ToLower(text), -1)
}

// TermCounts tokenizes text and returns raw term frequencies.
func TermCounts(text string) map[string]int {
	counts := map[string]int{}
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}
