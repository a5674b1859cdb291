package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockBackend_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockBackend(
		MockResponse{Text: "first answer", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "second answer"},
	)

	resp1, err := mock.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "first answer" {
		t.Fatalf("expected 'first answer', got %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "second answer" {
		t.Fatalf("expected 'second answer', got %q", resp2.Text)
	}
}

func TestMockBackend_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockBackend()
	_, err := mock.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var inf *ErrInferenceFailure
	if !errors.As(err, &inf) {
		t.Fatalf("expected ErrInferenceFailure, got: %T", err)
	}
}

func TestMockBackend_RecordsCalls(t *testing.T) {
	mock := NewMockBackend(
		MockResponse{Text: "ok"},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Complete(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockBackend_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockBackend(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "fact-extract")
	if p := PurposeFrom(ctx); p != "fact-extract" {
		t.Fatalf("expected 'fact-extract', got %q", p)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "local needs nothing",
			cfg:     Config{Backend: "local"},
			wantErr: false,
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Backend: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Backend: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "gemini without key",
			cfg:     Config{Backend: "gemini"},
			wantErr: true,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Backend: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown backend",
			cfg:     Config{Backend: "cloudmagic"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscover_ExplicitBackend(t *testing.T) {
	t.Setenv("FACTDECK_BACKEND", "mock")

	cfg, found := Discover()
	if !found {
		t.Fatal("expected explicit backend to be found")
	}
	if cfg.Backend != "mock" {
		t.Fatalf("expected 'mock', got %q", cfg.Backend)
	}
}

func TestDiscover_LocalURL(t *testing.T) {
	t.Setenv("FACTDECK_LOCAL_URL", "http://127.0.0.1:1234/v1")

	cfg, found := Discover()
	if !found {
		t.Fatal("expected local URL to be treated as explicit")
	}
	if cfg.Backend != "local" {
		t.Fatalf("expected 'local', got %q", cfg.Backend)
	}
	if cfg.Local.BaseURL != "http://127.0.0.1:1234/v1" {
		t.Fatalf("unexpected base URL: %q", cfg.Local.BaseURL)
	}
}

func TestDiscover_AnthropicKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, found := Discover()
	if !found {
		t.Fatal("expected anthropic key to be discovered")
	}
	if cfg.Backend != "anthropic" {
		t.Fatalf("expected 'anthropic', got %q", cfg.Backend)
	}
	if cfg.Anthropic.APIKey != "sk-ant-test" {
		t.Fatal("expected discovered key to be set")
	}
}

func TestDiscover_NothingConfigured(t *testing.T) {
	// The test environment may carry real keys; clear the probed ones.
	for _, v := range []string{"FACTDECK_BACKEND", "FACTDECK_LOCAL_URL", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(v, "")
	}

	cfg, found := Discover()
	if found {
		t.Fatal("expected nothing to be found")
	}
	if cfg.Backend != "local" {
		t.Fatalf("expected implicit local default, got %q", cfg.Backend)
	}
	if cfg.Local.BaseURL != DefaultLocalBaseURL {
		t.Fatalf("expected default base URL, got %q", cfg.Local.BaseURL)
	}
}
