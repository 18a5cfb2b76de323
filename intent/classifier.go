package intent

import (
	"regexp"
	"strings"

	"github.com/hupe1980/chatmesh/core"
)

// rule pairs a predicate with the intent it yields. The classifier evaluates
// rules in slice order; the first match wins, which makes the ordering
// invariant testable in isolation.
type rule struct {
	name   string
	match  func(lower string) bool
	intent core.Intent
}

var (
	helpRE      = regexp.MustCompile(`^(?:help|/help|capabilities)\b`)
	echoRE      = regexp.MustCompile(`^echo\s+`)
	summarizeRE = regexp.MustCompile(`^summari[sz]e\s+`)
	rememberRE  = regexp.MustCompile(`^remember\s+`)
	forgetRE    = regexp.MustCompile(`^forget\s+`)
	listRE      = regexp.MustCompile(`^list\s+memory$`)
)

var rules = []rule{
	{"empty", func(s string) bool { return s == "" }, core.IntentEmpty},
	{"help", helpRE.MatchString, core.IntentHelp},
	{"echo", echoRE.MatchString, core.IntentEcho},
	{"summarize", summarizeRE.MatchString, core.IntentSummarize},
	{"remember", rememberRE.MatchString, core.IntentMemoryRemember},
	{"forget", forgetRE.MatchString, core.IntentMemoryForget},
	{"list", listRE.MatchString, core.IntentMemoryList},
}

// Classify maps an utterance to its intent. Deterministic: fixed rule order,
// first match wins, anything unmatched is chat.
func Classify(utterance string) core.Intent {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	for _, r := range rules {
		if r.match(lower) {
			return r.intent
		}
	}
	return core.IntentChat
}

// ContainsWord reports whether word occurs in text as a whole word. Substring
// containment is deliberately not used: "cap" must match "cap and gown" but
// never "capital".
func ContainsWord(text, word string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// EchoPayload returns the text after the echo keyword, verbatim.
func EchoPayload(utterance string) string {
	trimmed := strings.TrimSpace(utterance)
	if loc := echoRE.FindStringIndex(strings.ToLower(trimmed)); loc != nil {
		return trimmed[loc[1]:]
	}
	return ""
}

// SummarizePayload returns the text after the summarize keyword.
func SummarizePayload(utterance string) string {
	trimmed := strings.TrimSpace(utterance)
	if loc := summarizeRE.FindStringIndex(strings.ToLower(trimmed)); loc != nil {
		return trimmed[loc[1]:]
	}
	return ""
}

// ParseRemember splits a "remember <key>: <value>" command on the first
// colon, trimming both sides. A missing colon or empty key/value is a
// MalformedCommandError whose hint is safe to surface to the user.
func ParseRemember(utterance string) (key, value string, err error) {
	trimmed := strings.TrimSpace(utterance)
	loc := rememberRE.FindStringIndex(strings.ToLower(trimmed))
	if loc == nil {
		return "", "", &core.MalformedCommandError{Hint: "try: remember <key>: <value>"}
	}
	rest := trimmed[loc[1]:]
	ci := strings.Index(rest, ":")
	if ci < 0 {
		return "", "", &core.MalformedCommandError{Hint: "missing colon, try: remember <key>: <value>"}
	}
	key = strings.TrimSpace(rest[:ci])
	value = strings.TrimSpace(rest[ci+1:])
	if key == "" || value == "" {
		return "", "", &core.MalformedCommandError{Hint: "both key and value are needed, try: remember <key>: <value>"}
	}
	return key, value, nil
}

// ForgetKey returns the key following the forget keyword.
func ForgetKey(utterance string) string {
	trimmed := strings.TrimSpace(utterance)
	if loc := forgetRE.FindStringIndex(strings.ToLower(trimmed)); loc != nil {
		return strings.TrimSpace(trimmed[loc[1]:])
	}
	return ""
}
