package provision

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun/factdeck/internal/llm"
	"github.com/arjun/factdeck/internal/progress"
)

// fakeCache is an in-memory Cache for provisioner tests.
type fakeCache struct {
	mu       sync.Mutex
	staged   map[string]bool
	failWith map[string]error
	acquired []string
	progress func(onProgress func(float64))
}

func newFakeCache() *fakeCache {
	return &fakeCache{staged: map[string]bool{}, failWith: map[string]error{}}
}

func (c *fakeCache) Exists(modelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged[modelID]
}

func (c *fakeCache) Acquire(_ context.Context, modelID string, onProgress func(float64)) error {
	c.mu.Lock()
	c.acquired = append(c.acquired, modelID)
	err := c.failWith[modelID]
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if c.progress != nil {
		c.progress(onProgress)
	}
	c.mu.Lock()
	c.staged[modelID] = true
	c.mu.Unlock()
	return nil
}

// modelServer fakes an OpenAI-compatible local server answering the
// reachability probe.
func modelServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func localConfig(baseURL string) llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Backend = "local"
	cfg.Local.BaseURL = baseURL
	return cfg
}

func TestInitializeDegradedWhenCapabilityAbsent(t *testing.T) {
	p := New(Config{
		LLM:      localConfig("http://127.0.0.1:1/v1"), // nothing listens here
		Explicit: false,
	}, llm.NewGateway(), newFakeCache(), nil, progress.NewBus())

	err := p.Initialize(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Degraded())
	assert.False(t, p.Gateway().Available())

	// Gateway calls surface the degraded state as unavailable.
	_, err = p.Gateway().Complete(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, llm.ErrInferenceUnavailable)
}

func TestInitializeFailsWhenExplicitServerUnreachable(t *testing.T) {
	p := New(Config{
		LLM:      localConfig("http://127.0.0.1:1/v1"),
		Explicit: true,
	}, llm.NewGateway(), newFakeCache(), nil, progress.NewBus())

	err := p.Initialize(context.Background())
	require.ErrorIs(t, err, ErrModelInitialization)
	assert.False(t, p.Degraded())

	// The failure is recorded: a second call returns it without rerunning.
	err2 := p.Initialize(context.Background())
	assert.ErrorIs(t, err2, ErrModelInitialization)
}

func TestInitializeStagesFirstCandidate(t *testing.T) {
	ts := modelServer(t)
	cache := newFakeCache()

	gw := llm.NewGateway()
	p := New(Config{
		Candidates: []Candidate{
			{ModelID: "primary-model", Primary: true},
			{ModelID: "fallback-model"},
		},
		LLM:      localConfig(ts.URL + "/v1"),
		Explicit: true,
	}, gw, cache, nil, progress.NewBus())

	require.NoError(t, p.Initialize(context.Background()))
	assert.True(t, gw.Available())
	assert.Equal(t, "primary-model", gw.ModelID())
	assert.Equal(t, []string{"primary-model"}, cache.acquired)
	assert.False(t, p.Degraded())
}

func TestInitializeFallsBackToNextCandidate(t *testing.T) {
	ts := modelServer(t)
	cache := newFakeCache()
	cache.failWith["primary-model"] = errors.New("mirror down")

	gw := llm.NewGateway()
	p := New(Config{
		Candidates: []Candidate{
			{ModelID: "primary-model", Primary: true},
			{ModelID: "fallback-model"},
		},
		LLM:      localConfig(ts.URL + "/v1"),
		Explicit: true,
	}, gw, cache, nil, progress.NewBus())

	require.NoError(t, p.Initialize(context.Background()))
	assert.Equal(t, "fallback-model", gw.ModelID())
	assert.Equal(t, []string{"primary-model", "fallback-model"}, cache.acquired)
}

func TestInitializeAllCandidatesFail(t *testing.T) {
	ts := modelServer(t)
	cache := newFakeCache()
	cache.failWith["a"] = errors.New("gone")
	cache.failWith["b"] = errors.New("also gone")

	p := New(Config{
		Candidates: []Candidate{{ModelID: "a", Primary: true}, {ModelID: "b"}},
		LLM:        localConfig(ts.URL + "/v1"),
		Explicit:   true,
	}, llm.NewGateway(), cache, nil, progress.NewBus())

	err := p.Initialize(context.Background())
	require.ErrorIs(t, err, ErrModelInitialization)
}

func TestInitializeSkipsAcquisitionWhenCached(t *testing.T) {
	ts := modelServer(t)
	cache := newFakeCache()
	cache.staged["primary-model"] = true

	gw := llm.NewGateway()
	p := New(Config{
		Candidates: []Candidate{{ModelID: "primary-model", Primary: true}},
		LLM:        localConfig(ts.URL + "/v1"),
		Explicit:   true,
	}, gw, cache, nil, progress.NewBus())

	require.NoError(t, p.Initialize(context.Background()))
	assert.Empty(t, cache.acquired)
	assert.Equal(t, "primary-model", gw.ModelID())
}

func TestInitializeRemoteBackendNeedsNoArtifact(t *testing.T) {
	cfg := llm.DefaultConfig()
	cfg.Backend = "mock"

	cache := newFakeCache()
	gw := llm.NewGateway()
	p := New(Config{LLM: cfg, Explicit: true}, gw, cache, nil, progress.NewBus())

	require.NoError(t, p.Initialize(context.Background()))
	assert.True(t, gw.Available())
	assert.Empty(t, cache.acquired)
}

func TestInitializeSingleFlight(t *testing.T) {
	ts := modelServer(t)
	cache := newFakeCache()

	p := New(Config{
		Candidates: []Candidate{{ModelID: "primary-model", Primary: true}},
		LLM:        localConfig(ts.URL + "/v1"),
		Explicit:   true,
	}, llm.NewGateway(), cache, nil, progress.NewBus())

	var errCount atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Initialize(context.Background()); err != nil {
				errCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, errCount.Load())
	// The artifact was acquired exactly once despite 8 concurrent callers.
	assert.Equal(t, []string{"primary-model"}, cache.acquired)
}

func TestInitializeWrapDecoratesBackend(t *testing.T) {
	cfg := llm.DefaultConfig()
	cfg.Backend = "mock"

	mock := llm.NewMockBackend(llm.MockResponse{Text: "ok"})
	gw := llm.NewGateway()
	p := New(Config{
		LLM:      cfg,
		Explicit: true,
		Wrap:     func(llm.Backend) llm.Backend { return mock },
	}, gw, newFakeCache(), nil, progress.NewBus())

	require.NoError(t, p.Initialize(context.Background()))

	text, err := gw.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, mock.CallCount())
}

func TestDownloadProgressEvents(t *testing.T) {
	ts := modelServer(t)
	cache := newFakeCache()
	cache.progress = func(onProgress func(float64)) {
		for _, f := range []float64{0.1, 0.1, 0.05, 0.2, 0.2, 1.0} {
			onProgress(f)
		}
	}

	bus := progress.NewBus()
	var events []progress.ModelDownload
	bus.Subscribe(func(ev progress.Event) {
		if d, ok := ev.(progress.ModelDownload); ok {
			events = append(events, d)
		}
	})

	p := New(Config{
		Candidates: []Candidate{{ModelID: "m", Primary: true}},
		LLM:        localConfig(ts.URL + "/v1"),
		Explicit:   true,
	}, llm.NewGateway(), cache, nil, bus)

	require.NoError(t, p.Initialize(context.Background()))

	// Repeated and regressing fractions are dropped; the stream is
	// strictly increasing.
	require.Equal(t, 3, len(events))
	assert.Equal(t, 0.1, events[0].Progress)
	assert.Equal(t, 0.2, events[1].Progress)
	assert.Equal(t, 1.0, events[2].Progress)
}

func TestInitializeSeedsFromBundledAsset(t *testing.T) {
	ts := modelServer(t)

	cache := newFakeCache()
	seeded := false
	assets := assetFunc(func(name string) (string, error) {
		seeded = true
		cache.staged["primary-model"] = true
		return "/tmp/" + name, nil
	})

	gw := llm.NewGateway()
	p := New(Config{
		Candidates: []Candidate{{ModelID: "primary-model", AssetSeed: "primary-model.gguf", Primary: true}},
		LLM:        localConfig(ts.URL + "/v1"),
		Explicit:   true,
	}, gw, cache, assets, progress.NewBus())

	require.NoError(t, p.Initialize(context.Background()))
	assert.True(t, seeded)
	// Seeding satisfied the cache, so no network acquisition happened.
	assert.Empty(t, cache.acquired)
	assert.Equal(t, "primary-model", gw.ModelID())
}

type assetFunc func(name string) (string, error)

func (f assetFunc) CopyAsset(name string) (string, error) { return f(name) }
