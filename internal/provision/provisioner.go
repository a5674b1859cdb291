package provision

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/arjun/factdeck/internal/llm"
	"github.com/arjun/factdeck/internal/progress"
)

// ErrModelInitialization means no candidate produced a usable completion
// session. Fatal to AI features only: storage and the rest of the
// application stay usable, and extraction can still run in degraded mode.
var ErrModelInitialization = errors.New("model initialization failed")

// Config wires the provisioner.
type Config struct {
	// Candidates is the ordered model catalog for the local backend.
	Candidates []Candidate

	// LLM selects and configures the completion backend.
	LLM llm.Config

	// Explicit is true when the capability was configured explicitly
	// (llm.Discover found something). When false, an unreachable local
	// server means the capability is absent and initialization succeeds
	// in degraded mode.
	Explicit bool

	// Wrap optionally decorates the chosen backend before binding, e.g.
	// with request logging.
	Wrap func(llm.Backend) llm.Backend

	Logger *zap.SugaredLogger
}

type initState int

const (
	stateNew initState = iota
	stateReady
	stateFailed
)

// Provisioner initializes the shared completion session exactly once.
type Provisioner struct {
	cfg     Config
	gateway *llm.Gateway
	cache   Cache
	assets  Assets
	bus     *progress.Bus
	log     *zap.SugaredLogger

	flight singleflight.Group

	mu       sync.Mutex
	state    initState
	degraded bool
	initErr  error
}

// New creates a provisioner. assets may be nil when no bundled seeds ship
// with the binary.
func New(cfg Config, gateway *llm.Gateway, cache Cache, assets Assets, bus *progress.Bus) *Provisioner {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = DefaultCandidates()
	}
	return &Provisioner{
		cfg:     cfg,
		gateway: gateway,
		cache:   cache,
		assets:  assets,
		bus:     bus,
		log:     log,
	}
}

// Gateway returns the shared completion gateway. Unbound until Initialize
// succeeds with a session.
func (p *Provisioner) Gateway() *llm.Gateway {
	return p.gateway
}

// Degraded reports whether initialization completed without a completion
// session. Meaningful only after Initialize returns.
func (p *Provisioner) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

// Initialize resolves a completion session. Idempotent and single-flight:
// concurrent callers block until the first caller's outcome is known and
// all observe the same result; later calls return the recorded result
// without re-running.
func (p *Provisioner) Initialize(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case stateReady:
		p.mu.Unlock()
		return nil
	case stateFailed:
		err := p.initErr
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	_, err, _ := p.flight.Do("initialize", func() (any, error) {
		err := p.initialize(ctx)

		p.mu.Lock()
		if err != nil {
			p.state = stateFailed
			p.initErr = err
		} else {
			p.state = stateReady
		}
		p.mu.Unlock()

		return nil, err
	})
	return err
}

func (p *Provisioner) initialize(ctx context.Context) error {
	if p.cfg.LLM.Backend == "local" {
		return p.initializeLocal(ctx)
	}

	// Remote and mock backends need no artifact staging.
	backend, err := llm.NewBackend(ctx, p.cfg.LLM)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelInitialization, err)
	}
	p.bind(backend)
	p.log.Infow("completion session ready", "backend", p.cfg.LLM.Backend, "model", backend.ModelID())
	return nil
}

func (p *Provisioner) initializeLocal(ctx context.Context) error {
	base := llm.NewLocalBackend(p.cfg.LLM.Local)

	if err := base.Ping(ctx); err != nil {
		if !p.cfg.Explicit {
			// Nothing was configured and nothing answers: the
			// capability is absent. Downstream stages run on
			// sentence-segmentation fallback.
			p.markDegraded()
			p.log.Infow("no completion capability found, continuing in degraded mode")
			return nil
		}
		return fmt.Errorf("%w: %v", ErrModelInitialization, err)
	}

	// An explicitly named model bypasses the candidate catalog.
	if p.cfg.LLM.Local.Model != "" {
		p.bind(base)
		p.log.Infow("completion session ready", "backend", "local", "model", base.ModelID())
		return nil
	}

	var lastErr error
	for _, cand := range p.cfg.Candidates {
		if err := p.stage(ctx, cand); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", ErrModelInitialization, err)
			}
			p.log.Warnw("candidate unusable, trying next",
				"model", cand.ModelID, "primary", cand.Primary, "err", err)
			lastErr = err
			continue
		}

		backend := base.WithModel(cand.ModelID)
		p.bind(backend)
		p.log.Infow("completion session ready",
			"backend", "local", "model", cand.ModelID, "primary", cand.Primary)
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("%w: all candidates failed, last: %v", ErrModelInitialization, lastErr)
	}
	return fmt.Errorf("%w: no candidates configured", ErrModelInitialization)
}

// stage ensures the candidate's artifact is in the local cache: cache
// check, then bundled-asset seeding, then network acquisition.
func (p *Provisioner) stage(ctx context.Context, cand Candidate) error {
	if p.cache.Exists(cand.ModelID) {
		return nil
	}

	if cand.AssetSeed != "" && p.assets != nil {
		if _, err := p.assets.CopyAsset(cand.AssetSeed); err != nil {
			p.log.Debugw("bundled asset seeding failed",
				"model", cand.ModelID, "asset", cand.AssetSeed, "err", err)
		} else if p.cache.Exists(cand.ModelID) {
			return nil
		}
	}

	return p.cache.Acquire(ctx, cand.ModelID, p.downloadProgress())
}

func (p *Provisioner) bind(b llm.Backend) {
	if p.cfg.Wrap != nil {
		b = p.cfg.Wrap(b)
	}
	p.gateway.Bind(b)
}

func (p *Provisioner) markDegraded() {
	p.mu.Lock()
	p.degraded = true
	p.mu.Unlock()
}

// downloadProgress returns a callback that publishes model-download events.
// Fractions are clamped, rounded to whole percentages, and deduplicated so
// the stream is monotonically non-decreasing with no repeats.
func (p *Provisioner) downloadProgress() func(float64) {
	last := -1
	return func(f float64) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		pct := int(f * 100)
		if pct <= last {
			return
		}
		last = pct
		if p.bus != nil {
			p.bus.Publish(progress.ModelDownload{Progress: float64(pct) / 100})
		}
	}
}
