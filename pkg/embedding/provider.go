package embedding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"docqa-go/internal/config"
	"docqa-go/pkg/log"
)

// State is the lifecycle of the primary model held by a Provider.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Provider is the process-wide embedding handle. The primary model is loaded
// on the first Embed call; concurrent first calls wait for a single load.
// A failed load routes every call to HashEmbedding until RetryInterval has
// passed, after which the next call tries to load again. A zero
// RetryInterval makes the failure permanent.
type Provider struct {
	model         Model
	retryInterval time.Duration
	now           func() time.Time

	mu       sync.Mutex
	state    atomic.Int32
	failedAt time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithRetryInterval lets a failed model be reloaded after d.
func WithRetryInterval(d time.Duration) Option {
	return func(p *Provider) { p.retryInterval = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// NewProvider wraps model. A nil model means the fallback is always used.
func NewProvider(model Model, opts ...Option) *Provider {
	p := &Provider{model: model, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewProviderFromConfig builds the Provider selected by embedding.provider.
func NewProviderFromConfig(cfg config.EmbeddingConfig) (*Provider, error) {
	var model Model
	switch cfg.Provider {
	case "remote":
		model = NewRemoteModel(cfg)
	case "lexical", "":
		model = NewLexicalModel()
	case "fallback":
		model = nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return NewProvider(model, WithRetryInterval(cfg.RetryInterval)), nil
}

// Dimension returns the length of every vector the Provider produces.
func (p *Provider) Dimension() int { return Dimension }

// State reports the primary model's lifecycle state.
func (p *Provider) State() State { return State(p.state.Load()) }

// ModelName returns the primary model name, or "fallback" when there is none.
func (p *Provider) ModelName() string {
	if p.model == nil {
		return "fallback"
	}
	return p.model.Name()
}

// Embed returns the primary model's vector for text, or the fallback vector
// when the model is unavailable. Model failures are logged, never returned;
// the only error is a context that is already done.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.model == nil || !p.ensureLoaded(ctx) {
		return HashEmbedding(text), nil
	}

	vec, err := p.model.Embed(ctx, text)
	if err == nil && len(vec) != Dimension {
		err = fmt.Errorf("%w: got %d, need %d", ErrDimensionMismatch, len(vec), Dimension)
	}
	if err != nil {
		log.Warnw("[Embedding] primary model call failed, using hash fallback",
			"error", &EmbeddingError{Model: p.model.Name(), Op: "embed", Err: err})
		return HashEmbedding(text), nil
	}
	return vec, nil
}

// ensureLoaded reports whether the primary model is ready, loading it if needed.
func (p *Provider) ensureLoaded(ctx context.Context) bool {
	if p.State() == StateReady {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.State() {
	case StateReady:
		return true
	case StateFailed:
		if p.retryInterval <= 0 || p.now().Sub(p.failedAt) < p.retryInterval {
			return false
		}
	}

	p.state.Store(int32(StateLoading))
	log.Infof("[Embedding] loading model %s", p.model.Name())
	if err := p.model.Load(ctx); err != nil {
		if ctx.Err() != nil {
			// the caller gave up; let the next call try again
			p.state.Store(int32(StateUninitialized))
			return false
		}
		p.failedAt = p.now()
		p.state.Store(int32(StateFailed))
		log.Warnw("[Embedding] model load failed, using hash fallback",
			"error", &EmbeddingError{Model: p.model.Name(), Op: "load", Err: err})
		return false
	}
	p.state.Store(int32(StateReady))
	log.Infof("[Embedding] model %s ready", p.model.Name())
	return true
}
