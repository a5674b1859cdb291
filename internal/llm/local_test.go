package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestLocalBackend(t *testing.T, handler http.HandlerFunc) *LocalBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewLocalBackend(LocalConfig{
		BaseURL: server.URL + "/v1",
		Model:   "qwen2.5-1.5b-instruct",
	})
}

func TestLocalBackend_HappyPath(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-test",
			"object": "chat.completion",
			"model":  "qwen2.5-1.5b-instruct",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": `[{"content":"Cats sleep 16 hours a day."}]`,
					},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     120,
				"completion_tokens": 40,
				"total_tokens":      160,
			},
		})
	}

	b := newTestLocalBackend(t, handler)
	resp, err := b.Complete(context.Background(), Request{
		System:    "You extract facts.",
		Messages:  []Message{{Role: RoleUser, Content: "extract"}},
		MaxTokens: 512,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `[{"content":"Cats sleep 16 hours a day."}]` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Usage.InputTokens != 120 {
		t.Fatalf("expected 120 input tokens, got %d", resp.Usage.InputTokens)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestLocalBackend_TruncatedResponse(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-test",
			"object": "chat.completion",
			"model":  "qwen2.5-1.5b-instruct",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": `[{"content":"truncated`,
					},
					"finish_reason": "length",
				},
			},
		})
	}

	b := newTestLocalBackend(t, handler)
	resp, err := b.Complete(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "extract"}},
		MaxTokens: 8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Fatalf("expected stop reason 'max_tokens', got %q", resp.StopReason)
	}
}

func TestLocalBackend_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "model failed to load",
				"type":    "server_error",
			},
		})
	}

	b := newTestLocalBackend(t, handler)
	_, err := b.Complete(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "x"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var inf *ErrInferenceFailure
	if !errors.As(err, &inf) {
		t.Fatalf("expected ErrInferenceFailure, got: %T (%v)", err, err)
	}
}

func TestLocalBackend_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "slow down",
				"type":    "rate_limit_error",
			},
		})
	}

	b := newTestLocalBackend(t, handler)
	_, err := b.Complete(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "x"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestLocalBackend_Ping(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "qwen2.5-1.5b-instruct", "object": "model"},
			},
		})
	}

	b := newTestLocalBackend(t, handler)
	if err := b.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed: %v", err)
	}
}

func TestLocalBackend_PingUnreachable(t *testing.T) {
	b := NewLocalBackend(LocalConfig{
		// Port 1 is never listening.
		BaseURL: "http://127.0.0.1:1/v1",
		Model:   "qwen2.5-1.5b-instruct",
	})
	if err := b.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail against a dead port")
	}
}

func TestLocalBackend_WithModel(t *testing.T) {
	b := NewLocalBackend(LocalConfig{Model: "first"})
	b2 := b.WithModel("second")

	if b.ModelID() != "first" {
		t.Fatalf("original backend model changed: %q", b.ModelID())
	}
	if b2.ModelID() != "second" {
		t.Fatalf("expected 'second', got %q", b2.ModelID())
	}
}
