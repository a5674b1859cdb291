package llm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arjun/factdeck/internal/store"
)

// LoggingBackend is a decorator that records every completion round-trip
// in the request log and the structured logger. Logging failures never
// fail the request.
type LoggingBackend struct {
	inner Backend
	logs  store.RequestLogRepo
	log   *zap.SugaredLogger
	runID string
}

// WithLogging wraps a Backend with request logging. The run ID groups all
// requests of one process lifetime. repo may be nil to log to zap only.
func WithLogging(b Backend, repo store.RequestLogRepo, log *zap.SugaredLogger) Backend {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LoggingBackend{
		inner: b,
		logs:  repo,
		log:   log,
		runID: uuid.New().String(),
	}
}

func (l *LoggingBackend) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Complete(ctx, req)

	latency := time.Since(start)
	entry := &store.RequestLog{
		RunID:       l.runID,
		Purpose:     purpose,
		Model:       l.inner.ModelID(),
		LatencyMs:   latency.Milliseconds(),
		PromptChars: promptChars(req),
		Success:     err == nil,
	}

	if resp != nil {
		entry.Model = resp.Model
		entry.InputTokens = resp.Usage.InputTokens
		entry.OutputTokens = resp.Usage.OutputTokens
		if c := LookupCost(resp.Model); c != nil {
			entry.CostUSD = c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}
	}
	if err != nil {
		entry.Error = err.Error()
		l.log.Warnw("completion failed",
			"purpose", purpose,
			"model", entry.Model,
			"latency", latency,
			"err", err,
		)
	} else {
		l.log.Debugw("completion ok",
			"purpose", purpose,
			"model", entry.Model,
			"latency", latency,
			"inputTokens", entry.InputTokens,
			"outputTokens", entry.OutputTokens,
		)
	}

	if l.logs != nil {
		if logErr := l.logs.Append(ctx, entry); logErr != nil {
			l.log.Warnw("request log append failed", "err", logErr)
		}
	}

	return resp, err
}

func (l *LoggingBackend) ModelID() string {
	return l.inner.ModelID()
}

// promptChars measures the prompt payload size sent to the backend.
func promptChars(req Request) int {
	n := len(req.System)
	for _, m := range req.Messages {
		n += len(m.Content)
	}
	return n
}
