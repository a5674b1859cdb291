package extract

import "go.uber.org/zap"

// Config holds extraction pipeline tuning knobs.
type Config struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// MaxFacts caps accepted facts per run in model mode.
	MaxFacts int

	// MaxFactsFallback caps accepted facts per run when no completion
	// session is available and the whole run uses sentence segmentation.
	MaxFactsFallback int

	// MaxTokens bounds each completion response.
	MaxTokens int

	// Temperature for extraction requests. Low keeps output grounded.
	Temperature float64

	Logger *zap.SugaredLogger
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:        6000,
		MaxFacts:         120,
		MaxFactsFallback: 60,
		MaxTokens:        2048,
		Temperature:      0.3,
	}
}
