package llm

import (
	"context"
	"fmt"
)

// NewBackend constructs the physical adapter selected by cfg. The adapter
// is chosen exactly once, during provisioning; callers never pick a shape
// per request. Local server reachability is not checked here, that is the
// provisioner's probe.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case "local":
		return NewLocalBackend(cfg.Local), nil
	case "anthropic":
		b, err := NewAnthropicBackend(cfg.Anthropic)
		if err != nil {
			return nil, fmt.Errorf("initializing anthropic backend: %w", err)
		}
		return b, nil
	case "gemini":
		b, err := NewGeminiBackend(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini backend: %w", err)
		}
		return b, nil
	case "mock":
		return NewMockBackend(), nil
	default:
		return nil, fmt.Errorf("unknown completion backend: %q", cfg.Backend)
	}
}
