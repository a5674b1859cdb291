// Package quiz turns a sample of extracted facts into validated
// multiple-choice items via one batched completion request. Quiz failures
// are never fatal: a bad batch yields zero items and fact persistence
// proceeds untouched.
package quiz

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/arjun/factdeck/internal/facts"
	"github.com/arjun/factdeck/internal/jsonx"
	"github.com/arjun/factdeck/internal/llm"
	"github.com/arjun/factdeck/internal/progress"
)

// quizItemSchema rejects malformed items before clamping. The correct
// index is only required to be an integer here; clamping into [0,3] is the
// validator's job, not the schema's.
var quizItemSchema = jsonx.Schema{
	Name: "quiz-item",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"question", "options", "correctIndex"},
		"properties": map[string]any{
			"question": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"options": map[string]any{
				"type":     "array",
				"minItems": 4,
				"maxItems": 4,
				"items": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
			},
			"correctIndex": map[string]any{
				"type": "integer",
			},
		},
	},
}

// Generator is the quiz generation stage.
type Generator struct {
	gw  *llm.Gateway
	bus *progress.Bus
	cfg Config
	log *zap.SugaredLogger
}

// New creates a generator publishing progress on bus. Non-positive
// sampling knobs in cfg fall back to the defaults; the quota arithmetic
// divides by Interval and must never see zero.
func New(gw *llm.Gateway, bus *progress.Bus, cfg Config) *Generator {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxQuizzes <= 0 {
		cfg.MaxQuizzes = def.MaxQuizzes
	}
	if cfg.MinFacts <= 0 {
		cfg.MinFacts = def.MinFacts
	}
	return &Generator{gw: gw, bus: bus, cfg: cfg, log: log}
}

// Generate produces validated quiz questions for a sample of source facts.
// Empty source or a sample quota of zero returns immediately with no
// events. Request failures yield zero items, never an error.
func (g *Generator) Generate(ctx context.Context, topic string, source []facts.Fact) []facts.QuizQuestion {
	if len(source) == 0 {
		return nil
	}

	selected := sample(source, g.cfg)
	if len(selected) == 0 {
		return nil
	}

	g.bus.Publish(progress.QuizStart{Topic: topic, Total: len(selected)})

	accepted := g.requestBatch(ctx, topic, selected)
	for i := range accepted {
		g.bus.Publish(progress.QuizProgress{
			Topic: topic, Current: i + 1, Total: len(selected),
		})
	}

	g.bus.Publish(progress.QuizComplete{Topic: topic, Total: len(accepted)})
	return accepted
}

// quota returns how many quizzes n facts earn: one per Interval facts,
// capped at MaxQuizzes, with a minimum of one once MinFacts is reached.
func quota(n int, cfg Config) int {
	q := n / cfg.Interval
	if q == 0 && n >= cfg.MinFacts {
		q = 1
	}
	if q > cfg.MaxQuizzes {
		q = cfg.MaxQuizzes
	}
	return q
}

// sample picks the quota of facts at a fixed stride, starting at index 0,
// ascending, without duplicates. 56 facts at quota 5 gives stride 11 and
// indices 0, 11, 22, 33, 44.
func sample(source []facts.Fact, cfg Config) []facts.Fact {
	picks := quota(len(source), cfg)
	if picks == 0 {
		return nil
	}

	stride := len(source) / picks
	if stride < 1 {
		stride = 1
	}

	selected := make([]facts.Fact, 0, picks)
	for i := 0; i < len(source) && len(selected) < picks; i += stride {
		selected = append(selected, source[i])
	}
	return selected
}

func (g *Generator) requestBatch(ctx context.Context, topic string, selected []facts.Fact) []facts.QuizQuestion {
	raw, err := g.gw.Complete(llm.WithPurpose(ctx, "quiz-gen"), batchRequest(topic, selected, g.cfg))
	if err != nil {
		g.log.Warnw("quiz batch request failed, yielding zero quizzes",
			"topic", topic, "err", err)
		return nil
	}

	items, err := jsonx.DecodeArray(raw)
	if err != nil {
		g.log.Warnw("quiz response had no parsable array", "topic", topic, "err", err)
		return nil
	}

	// One quiz object per selected fact: extra items beyond the batch
	// size are discarded before validation.
	if len(items) > len(selected) {
		g.log.Debugw("quiz response overran the batch, truncating",
			"topic", topic, "requested", len(selected), "returned", len(items))
		items = items[:len(selected)]
	}

	var accepted []facts.QuizQuestion
	for i, item := range items {
		q, ok := parseItem(item)
		if !ok {
			g.log.Debugw("dropping invalid quiz item", "topic", topic, "index", i)
			continue
		}
		accepted = append(accepted, q)
	}
	return accepted
}

// parseItem validates one quiz object: non-empty question, exactly 4
// non-empty options, correct index clamped into [0,3]. Invalid items are
// dropped, never patched with placeholders.
func parseItem(item json.RawMessage) (facts.QuizQuestion, bool) {
	if err := jsonx.Validate(quizItemSchema, item); err != nil {
		return facts.QuizQuestion{}, false
	}

	var q facts.QuizQuestion
	if err := json.Unmarshal(item, &q); err != nil {
		return facts.QuizQuestion{}, false
	}

	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" || len(q.Options) != 4 {
		return facts.QuizQuestion{}, false
	}
	for i, opt := range q.Options {
		q.Options[i] = strings.TrimSpace(opt)
		if q.Options[i] == "" {
			return facts.QuizQuestion{}, false
		}
	}

	if q.CorrectIndex < 0 {
		q.CorrectIndex = 0
	}
	if q.CorrectIndex > 3 {
		q.CorrectIndex = 3
	}
	return q, true
}
