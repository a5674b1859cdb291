// Package extract turns source text into a bounded, deduplicated set of
// short facts. Model extraction is preferred; a one-shot reformat recovery
// and a sentence-segmentation fallback make every chunk produce something
// even when the model misbehaves or is absent.
package extract

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

// factItemSchema validates one extracted item before acceptance.
var factItemSchema = jsonx.Schema{
	Name: "fact-item",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"content"},
		"properties": map[string]any{
			"content": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
		},
	},
}

// Extractor is the fact extraction pipeline.
type Extractor struct {
	gw  *llm.Gateway
	bus *progress.Bus
	cfg Config
	log *zap.SugaredLogger
}

// New creates an extractor publishing progress on bus. Non-positive
// sizes and caps in cfg fall back to the defaults, so a zero-value Config
// cannot stall the chunking loop.
func New(gw *llm.Gateway, bus *progress.Bus, cfg Config) *Extractor {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.MaxFacts <= 0 {
		cfg.MaxFacts = def.MaxFacts
	}
	if cfg.MaxFactsFallback <= 0 {
		cfg.MaxFactsFallback = def.MaxFactsFallback
	}
	return &Extractor{gw: gw, bus: bus, cfg: cfg, log: log}
}

// run holds the state owned by one extraction invocation: the dedup set
// and the accumulator. Never shared across runs.
type run struct {
	seen     map[string]struct{}
	accepted []facts.Fact
	cap      int
}

func (r *run) full() bool { return len(r.accepted) >= r.cap }

// add normalizes, deduplicates, and accepts one candidate. Returns true
// when the candidate was accepted.
func (r *run) add(content, topic string, source facts.Source) bool {
	if r.full() {
		return false
	}
	content = strings.TrimSpace(truncateRunes(strings.TrimSpace(content), facts.MaxContentLen))
	if content == "" {
		return false
	}
	key := normalizeContent(content)
	if _, dup := r.seen[key]; dup {
		return false
	}
	r.seen[key] = struct{}{}
	r.accepted = append(r.accepted, facts.Fact{
		Content: content,
		Topic:   topic,
		Source:  source,
	})
	return true
}

// normalizeContent is the dedup key: trimmed, lowercased, internal
// whitespace collapsed.
func normalizeContent(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Extract splits text into chunks and produces non-quiz facts for topic.
// Empty input returns immediately with no events. Per-chunk model failures
// degrade to sentence segmentation; only context cancellation (or another
// failure outside the per-chunk boundary) aborts the run.
func (e *Extractor) Extract(ctx context.Context, text, topic string) ([]facts.Fact, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	chunks := splitChunks(text, e.cfg.ChunkSize)
	modelMode := e.gw.Available()

	capacity := e.cfg.MaxFacts
	if !modelMode {
		capacity = e.cfg.MaxFactsFallback
	}
	r := &run{seen: make(map[string]struct{}), cap: capacity}

	e.bus.Publish(progress.ParseStart{Topic: topic, TotalChunks: len(chunks)})

	for i, chunk := range chunks {
		e.bus.Publish(progress.ParseChunkStart{
			Topic: topic, ChunkIndex: i, TotalChunks: len(chunks),
		})

		contents, source := e.extractChunk(ctx, chunk, modelMode)
		if err := ctx.Err(); err != nil {
			e.bus.Publish(progress.ParseError{Topic: topic, Message: err.Error()})
			return nil, err
		}

		acceptedHere := 0
		for _, c := range contents {
			if r.add(c, topic, source) {
				acceptedHere++
			}
			if r.full() {
				break
			}
		}

		e.bus.Publish(progress.ParseChunkComplete{
			Topic: topic, ChunkIndex: i, TotalChunks: len(chunks),
			FactsGenerated: acceptedHere,
		})

		if r.full() {
			e.log.Infow("fact cap reached, skipping remaining chunks",
				"topic", topic, "cap", capacity, "chunksDone", i+1, "totalChunks", len(chunks))
			break
		}
	}

	e.bus.Publish(progress.ParseComplete{
		Topic: topic, TotalChunks: len(chunks), FactsGenerated: len(r.accepted),
	})
	return r.accepted, nil
}

// extractChunk produces candidate contents for one chunk and reports their
// provenance. The model path tries one extraction request and one reformat
// recovery; anything short of valid items falls back to sentences.
func (e *Extractor) extractChunk(ctx context.Context, chunk string, modelMode bool) ([]string, facts.Source) {
	if modelMode {
		if contents := e.modelFacts(ctx, chunk); len(contents) > 0 {
			return contents, facts.SourcePrimary
		}
	}
	return splitSentences(chunk), facts.SourceFallback
}

func (e *Extractor) modelFacts(ctx context.Context, chunk string) []string {
	raw, err := e.gw.Complete(llm.WithPurpose(ctx, "fact-extract"), extractRequest(chunk, e.cfg))
	if err != nil {
		e.log.Warnw("chunk extraction request failed, falling back", "err", err)
		return nil
	}

	if contents := parseFactItems(raw); len(contents) > 0 {
		return contents
	}

	// One-shot recovery: ask the model to reformat its own prior output.
	e.log.Debugw("malformed extraction output, attempting reformat recovery")
	fixed, err := e.gw.Complete(llm.WithPurpose(ctx, "fact-reformat"), reformatRequest(raw, e.cfg))
	if err != nil {
		e.log.Warnw("reformat recovery request failed, falling back", "err", err)
		return nil
	}
	return parseFactItems(fixed)
}

// parseFactItems decodes raw model output into fact contents, dropping
// items that fail schema validation.
func parseFactItems(raw string) []string {
	items, err := jsonx.DecodeArray(raw)
	if err != nil {
		return nil
	}

	var contents []string
	for _, item := range items {
		if err := jsonx.Validate(factItemSchema, item); err != nil {
			continue
		}
		var parsed struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(item, &parsed); err != nil {
			continue
		}
		if strings.TrimSpace(parsed.Content) == "" {
			continue
		}
		contents = append(contents, parsed.Content)
	}
	return contents
}
