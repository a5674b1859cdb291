package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultLocalBaseURL is the llama.cpp server default. LM Studio
// (http://127.0.0.1:1234/v1) and Ollama (http://127.0.0.1:11434/v1) expose
// the same OpenAI-compatible surface.
const DefaultLocalBaseURL = "http://127.0.0.1:8080/v1"

// LocalBackend talks to an OpenAI-compatible completion server running on
// this machine. The server loads model artifacts from the models directory
// the provisioner stages into; requests name the model by its candidate ID.
type LocalBackend struct {
	client *openai.Client
	model  string
}

// NewLocalBackend creates a backend against cfg.BaseURL. Construction never
// touches the network; reachability is the provisioner's Ping.
func NewLocalBackend(cfg LocalConfig) *LocalBackend {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultLocalBaseURL
	}

	// Local servers generally ignore auth but the SDK wants a token.
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "local"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &LocalBackend{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}
}

// WithModel returns a copy of the backend bound to a different model ID.
// Used when iterating provisioning candidates against one server.
func (b *LocalBackend) WithModel(model string) *LocalBackend {
	return &LocalBackend{client: b.client, model: model}
}

func (b *LocalBackend) Complete(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    buildLocalMessages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stop:        req.Stop,
	}
	if req.TopP > 0 {
		chatReq.TopP = float32(req.TopP)
	}
	// TopK is not part of the OpenAI chat surface; local servers pick
	// their own default.

	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapLocalError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInferenceFailure{Message: "no choices in completion response"}
	}

	return &Response{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: mapLocalStopReason(resp.Choices[0].FinishReason),
	}, nil
}

func (b *LocalBackend) ModelID() string {
	return b.model
}

// Ping checks that the server is reachable. A model list round-trip is
// enough; it does not force the server to load any artifact.
func (b *LocalBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("local completion server unreachable: %w", err)
	}
	return nil
}

func buildLocalMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return messages
}

func mapLocalStopReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return "end"
	case openai.FinishReasonLength:
		return "max_tokens"
	default:
		return "end"
	}
}

func mapLocalError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrInferenceFailure{Message: "completion server error", Err: err}
		}
	}
	return &ErrInferenceFailure{Message: "completion request failed", Err: err}
}
