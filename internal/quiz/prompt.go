package quiz

import (
	"fmt"
	"strings"

	"github.com/arjun/factdeck/internal/facts"
	"github.com/arjun/factdeck/internal/llm"
)

const systemPrompt = `You write multiple-choice quiz questions from given facts.

Rules:
- Respond with a JSON array of objects, each shaped {"question": "...", "options": ["...","...","...","..."], "correctIndex": 0}.
- Produce exactly one quiz object per fact, in the same order as the facts.
- Each quiz has exactly 4 options where exactly one is correct. Distractors must be plausible, not absurd.
- correctIndex is the zero-based position of the correct option.
- Respond with the JSON array only. No prose, no markdown fences.`

// batchRequest builds the single batched quiz request for the selected
// facts.
func batchRequest(topic string, selected []facts.Fact, cfg Config) llm.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\nFacts:\n", topic)
	for i, f := range selected {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Content)
	}

	return llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}
