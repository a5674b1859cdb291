package llm

import "strings"

// reasoningMarkers are the delimiter pairs local models use to fence their
// internal chain-of-thought. Matching is case-insensitive.
var reasoningMarkers = [][2]string{
	{"<think>", "</think>"},
	{"<reasoning>", "</reasoning>"},
}

// StripReasoning removes delimited internal-reasoning segments from model
// output. The transform is order-preserving and idempotent: text outside
// the markers is untouched, and stripping already-stripped text is a no-op.
// An opening marker with no closing counterpart truncates the remainder.
func StripReasoning(s string) string {
	for _, m := range reasoningMarkers {
		s = stripSegments(s, m[0], m[1])
	}
	return s
}

func stripSegments(s, open, close string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	i := 0
	for {
		rel := strings.Index(lower[i:], open)
		if rel < 0 {
			b.WriteString(s[i:])
			return b.String()
		}
		start := i + rel
		b.WriteString(s[i:start])

		after := start + len(open)
		endRel := strings.Index(lower[after:], close)
		if endRel < 0 {
			// Unterminated reasoning block swallows the rest.
			return b.String()
		}
		i = after + endRel + len(close)
	}
}
