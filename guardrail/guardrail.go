package guardrail

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hupe1980/chatmesh/logging"
)

// pattern pairs a PII category with its detector and placeholder token.
type pattern struct {
	category    string
	re          *regexp.Regexp
	placeholder string
}

// Detection order doubles as priority for same-position overlaps.
var piiPatterns = []pattern{
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL]"},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	{"cc", regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`), "[CC]"},
	{"phone", regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`), "[PHONE]"},
	{"ip", regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d{1,2})\.){3}(?:25[0-5]|2[0-4]\d|1?\d{1,2})\b`), "[IP]"},
	{"url", regexp.MustCompile(`\bhttps?://\S+`), "[URL]"},
}

// Denylist of topic patterns that block a turn outright. Matching yields a
// canned refusal before any retrieval or generation runs.
var denylist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:make|build|construct|assemble)\s+(?:a\s+|an\s+)?(?:bomb|weapon|explosive|gun)\b`),
	regexp.MustCompile(`(?i)\bhow\s+to\s+(?:hurt|kill|harm|attack)\b`),
	regexp.MustCompile(`(?i)\bignore\s+(?:all|previous)\s+(?:instructions|directions)\b`),
	regexp.MustCompile(`(?i)\boverride\s+(?:your|all)\s+(?:rules|guardrails|safety)\b`),
	regexp.MustCompile(`(?i)\bjailbreak\b`),
	regexp.MustCompile(`(?i)\bdisabl(?:e|ing)\s+(?:safety|guardrails)\b`),
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Options configure a Filter.
type Options struct {
	// Logger receives warning events for fail-open redaction passes.
	Logger logging.Logger
}

// Filter is the guardrail applied to every inbound and outbound string. It is
// stateless and safe for concurrent use.
type Filter struct {
	logger logging.Logger
}

// New constructs a Filter with optional overrides.
func New(optFns ...func(o *Options)) *Filter {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Filter{logger: opts.Logger}
}

// span is one accepted match during overlap resolution.
type span struct {
	start, end  int
	priority    int
	placeholder string
}

// Redact replaces every detected PII span with its category placeholder and
// reports whether anything was found. The pass is fail-open: an internal
// failure returns the original text unredacted with a warning logged, never
// an error to the caller.
func (f *Filter) Redact(text string) (redacted string, found bool) {
	if text == "" {
		return text, false
	}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Warn("redaction pass failed, returning text unredacted", "panic", r)
			redacted = text
			found = false
		}
	}()

	var spans []span
	for prio, p := range piiPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if p.category == "cc" && !luhnValid(digitsOf(text[loc[0]:loc[1]])) {
				continue
			}
			spans = append(spans, span{start: loc[0], end: loc[1], priority: prio, placeholder: p.placeholder})
		}
	}
	if len(spans) == 0 {
		return text, false
	}

	// left to right, longest first, category order breaks exact ties
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		if spans[i].end != spans[j].end {
			return spans[i].end > spans[j].end
		}
		return spans[i].priority < spans[j].priority
	})

	var b strings.Builder
	idx := 0
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		b.WriteString(text[idx:s.start])
		b.WriteString(s.placeholder)
		idx = s.end
		lastEnd = s.end
	}
	b.WriteString(text[idx:])
	return b.String(), true
}

// IsDisallowed reports whether the text matches the content denylist.
func (f *Filter) IsDisallowed(text string) bool {
	for _, re := range denylist {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// CapLength truncates text to at most maxChars runes, marking the cut with an
// ellipsis. It never fails; non-positive maxChars means no cap.
func (f *Filter) CapLength(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	if maxChars == 1 {
		return "…"
	}
	return string(runes[:maxChars-1]) + "…"
}

// Normalize trims the text and collapses internal whitespace runs.
func (f *Filter) Normalize(text string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(text), " ")
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// luhnValid checks the Luhn checksum over a digit string. Length bounds are
// enforced by the caller's pattern; anything non-numeric fails.
func luhnValid(digits string) bool {
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	parity := len(digits) % 2
	total := 0
	for i, r := range digits {
		d := int(r - '0')
		if d < 0 || d > 9 {
			return false
		}
		if i%2 == parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		total += d
	}
	return total%10 == 0
}
