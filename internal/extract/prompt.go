package extract

import (
	"fmt"

	"github.com/arjun/factdeck/internal/llm"
)

const systemPrompt = `You extract short factual statements from source text.

Rules:
- Respond with a JSON array of objects, each shaped {"content": "..."}.
- Each fact must be a single self-contained statement of at most 200 characters.
- Every fact must be strictly grounded in the provided text. Do not add outside knowledge.
- Do not repeat the same fact twice.
- Respond with the JSON array only. No prose, no markdown fences.`

const reformatSystemPrompt = `You fix malformed output. You will receive text that was supposed to be a JSON array of objects shaped {"content": "..."}. Reformat it into exactly that shape. Respond with the JSON array only, nothing else.`

// extractRequest builds the per-chunk extraction request.
func extractRequest(chunk string, cfg Config) llm.Request {
	return llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Extract the facts from this text:\n\n%s", chunk),
		}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

// reformatRequest builds the one-shot recovery request, feeding the model
// its own prior raw output back.
func reformatRequest(raw string, cfg Config) llm.Request {
	return llm.Request{
		System: reformatSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Reformat this into a JSON array of {\"content\": string} objects:\n\n%s", raw),
		}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: 0,
	}
}
