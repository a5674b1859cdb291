package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Gateway is the single completion entry point for pipeline stages. It
// holds the backend bound during provisioning, strips reasoning markup from
// successful responses, and normalizes every failure into the package's
// error taxonomy. No retries happen at this layer; recovery policy belongs
// to callers.
type Gateway struct {
	mu      sync.RWMutex
	backend Backend
}

// NewGateway returns an unbound gateway. Until Bind is called every
// Complete fails with ErrInferenceUnavailable.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Bind installs the backend chosen by provisioning. Binding nil returns
// the gateway to the unavailable state.
func (g *Gateway) Bind(b Backend) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.backend = b
}

// Available reports whether a completion session is bound.
func (g *Gateway) Available() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.backend != nil
}

// ModelID returns the bound backend's model identifier, or "" when unbound.
func (g *Gateway) ModelID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.backend == nil {
		return ""
	}
	return g.backend.ModelID()
}

// Complete runs one completion call and returns the cleaned response text.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	g.mu.RLock()
	b := g.backend
	g.mu.RUnlock()

	if b == nil {
		return "", ErrInferenceUnavailable
	}

	resp, err := b.Complete(ctx, req)
	if err != nil {
		var inf *ErrInferenceFailure
		if errors.As(err, &inf) {
			return "", err
		}
		return "", &ErrInferenceFailure{Message: "completion request failed", Err: err}
	}

	text := strings.TrimSpace(StripReasoning(resp.Text))
	if text == "" {
		return "", &ErrInferenceFailure{Message: "empty completion"}
	}
	return text, nil
}
