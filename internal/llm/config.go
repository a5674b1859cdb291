package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds completion backend configuration.
type Config struct {
	// Backend selects the adapter.
	// Values: "local", "anthropic", "gemini", "mock"
	Backend string

	Local     LocalConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
}

// LocalConfig configures the OpenAI-compatible local server backend.
type LocalConfig struct {
	// BaseURL of the server. Default: DefaultLocalBaseURL (llama.cpp).
	BaseURL string

	// APIKey is sent as a bearer token. Local servers usually ignore it.
	APIKey string

	// Model is the model ID requests name. Usually left empty here; the
	// provisioner fills it from the winning candidate.
	Model string

	// Timeout bounds one completion round-trip. Local models on CPU can
	// be slow, so the default is generous.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: "local",
		Local: LocalConfig{
			BaseURL: DefaultLocalBaseURL,
			Timeout: 2 * time.Minute,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
	}
}

// ConfigFromEnv builds a Config from FACTDECK_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if b := os.Getenv("FACTDECK_BACKEND"); b != "" {
		cfg.Backend = b
	}

	if u := os.Getenv("FACTDECK_LOCAL_URL"); u != "" {
		cfg.Local.BaseURL = u
	}
	if m := os.Getenv("FACTDECK_LOCAL_MODEL"); m != "" {
		cfg.Local.Model = m
	}
	if k := os.Getenv("FACTDECK_LOCAL_API_KEY"); k != "" {
		cfg.Local.APIKey = k
	}

	if k := os.Getenv("FACTDECK_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("FACTDECK_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("FACTDECK_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("FACTDECK_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	return cfg
}

// Discover probes the environment for a completion capability. The second
// return is false when nothing was configured explicitly: the returned
// config then points at the default local server, which the provisioner
// must ping before trusting. Probe order: FACTDECK_* overrides, then
// standard API key env vars (Anthropic → Gemini).
func Discover() (Config, bool) {
	cfg := ConfigFromEnv()

	if os.Getenv("FACTDECK_BACKEND") != "" || os.Getenv("FACTDECK_LOCAL_URL") != "" {
		return cfg, true
	}

	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Backend = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Backend = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GOOGLE_API_KEY"); k != "" {
		cfg.Backend = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}

	return cfg, false
}

// Validate checks that the selected backend has its required settings.
func (c Config) Validate() error {
	switch c.Backend {
	case "local":
		// BaseURL has a default; nothing required up front.
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("FACTDECK_ANTHROPIC_API_KEY is required for the anthropic backend")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("FACTDECK_GEMINI_API_KEY is required for the gemini backend")
		}
	case "mock":
		// No settings needed.
	default:
		return fmt.Errorf("unknown completion backend: %q", c.Backend)
	}
	return nil
}
