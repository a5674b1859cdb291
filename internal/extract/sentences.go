package extract

import (
	"strings"
	"unicode"
)

// splitSentences naively segments text on sentence-terminal punctuation
// followed by whitespace. It is the degraded-mode substitute for model
// extraction, so simplicity wins over linguistic accuracy: abbreviations
// and decimal points produce extra splits and that is acceptable.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if isTerminal(r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
