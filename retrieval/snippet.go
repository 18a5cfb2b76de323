package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// extractSnippet returns a bounded excerpt centered on the earliest
// word-start occurrence of any query token, falling back to the start of the
// document. The radius counts runes, and the window is cut on rune boundaries
// so snippets stay valid UTF-8. Ellipses mark truncated edges.
func extractSnippet(text string, qTokens []string, radius int) string {
	if text == "" {
		return ""
	}
	if radius <= 0 {
		radius = 100
	}
	low := strings.ToLower(text)
	best := -1
	bestLen := 0
	for _, qt := range qTokens {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(qt))
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(low); loc != nil && (best < 0 || loc[0] < best) {
			best = loc[0]
			bestLen = loc[1] - loc[0]
		}
	}

	runes := []rune(text)
	var start, end int
	if best >= 0 {
		hit := utf8.RuneCountInString(low[:best])
		hitLen := utf8.RuneCountInString(low[best : best+bestLen])
		start = hit - radius
		if start < 0 {
			start = 0
		}
		end = hit + hitLen + radius
		if end > len(runes) {
			end = len(runes)
		}
	} else {
		start = 0
		end = 2 * radius
		if end > len(runes) {
			end = len(runes)
		}
	}

	snippet := strings.TrimSpace(strings.ReplaceAll(string(runes[start:end]), "\n", " "))
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(runes) {
		snippet += "…"
	}
	return snippet
}
