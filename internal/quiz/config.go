package quiz

import "go.uber.org/zap"

// Config holds quiz generation tuning knobs.
type Config struct {
	// Interval is the facts-per-quiz ratio: one quiz per Interval
	// extracted facts.
	Interval int

	// MaxQuizzes caps the batch size regardless of fact count.
	MaxQuizzes int

	// MinFacts is the smallest fact count that still earns one quiz.
	MinFacts int

	// MaxTokens bounds the batched completion response.
	MaxTokens int

	// Temperature for quiz requests. A little looser than extraction so
	// distractors vary.
	Temperature float64

	Logger *zap.SugaredLogger
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    8,
		MaxQuizzes:  5,
		MinFacts:    4,
		MaxTokens:   2048,
		Temperature: 0.6,
	}
}
