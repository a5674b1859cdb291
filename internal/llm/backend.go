package llm

import "context"

// Backend is the physical adapter over one completion integration. Exactly
// one Backend is chosen during provisioning; pipeline stages never talk to
// a Backend directly, they go through the Gateway.
type Backend interface {
	// Complete sends a conversation to the model and returns its raw text.
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this backend is configured to use.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Messages is the conversation. For single-turn extraction this holds
	// one user message; the reformat recovery adds the model's prior
	// output as an assistant turn.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64

	// TopP is nucleus sampling. Zero means backend default.
	TopP float64

	// TopK limits sampling to the K most likely tokens. Zero means
	// backend default. Ignored by backends without the knob.
	TopK int

	// Stop lists sequences that end generation early.
	Stop []string
}

// Message is a single turn in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds a backend's raw output, before reasoning stripping.
type Response struct {
	// Text is the model output as returned by the backend.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name to a backend model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}
