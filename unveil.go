package unveil

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/internal/runtime"
	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/content"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/google/uuid"
)

// Engine is the high-level entry point for the Unveil library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	cfg     config.Config
	clock   clock.Clock
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock injects the time source (e.g. clock.Manual in tests and simulations).
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Unveil Engine with the default page configuration unless
// WithConfig is given. The configuration is validated.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		cfg:   config.Default(),
		clock: clock.Real{},
	}
	for _, opt := range opts {
		opt(eng)
	}

	if err := eng.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.runtime = runtime.NewEngine(eng.cfg,
		runtime.WithClock(eng.clock),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Start creates the disclosure state for a new page view.
// An empty viewID is replaced by a random one.
func (e *Engine) Start(ctx context.Context, viewID string) *domain.State {
	if viewID == "" {
		viewID = uuid.NewString()
	}
	return e.runtime.Start(ctx, viewID)
}

// RevealItem reveals an item directly. Returns false when nothing changed.
func (e *Engine) RevealItem(ctx context.Context, state *domain.State, id string) bool {
	return e.runtime.RevealItem(ctx, state, id)
}

// HandleExplicitAction reveals the milestone item.
func (e *Engine) HandleExplicitAction(ctx context.Context, state *domain.State) bool {
	return e.runtime.HandleExplicitAction(ctx, state)
}

// HandleScrollSignal feeds a scroll delta (pixels) into the engine.
func (e *Engine) HandleScrollSignal(ctx context.Context, state *domain.State, delta float64) bool {
	return e.runtime.HandleScrollSignal(ctx, state, delta)
}

// HandleTimeSignal fires due cascade reveals and evaluates the dwell threshold.
func (e *Engine) HandleTimeSignal(ctx context.Context, state *domain.State) []string {
	return e.runtime.HandleTimeSignal(ctx, state)
}

// FireDue fires due cascade reveals only.
func (e *Engine) FireDue(ctx context.Context, state *domain.State) []string {
	return e.runtime.FireDue(ctx, state)
}

// FindNextEligibleItem returns the next item the auto-advance path would reveal.
func (e *Engine) FindNextEligibleItem(state *domain.State) (string, bool) {
	return e.runtime.FindNextEligibleItem(state)
}

// Apply dispatches a host signal, firing due cascade reveals around it.
func (e *Engine) Apply(ctx context.Context, state *domain.State, sig domain.Signal) (domain.Outcome, error) {
	return e.runtime.Apply(ctx, state, sig)
}

// NextDue reports when the next cascade reveal is due.
func (e *Engine) NextDue(state *domain.State) (time.Time, bool) {
	return e.runtime.NextDue(state)
}

// Items lists every item with its visibility.
func (e *Engine) Items(state *domain.State) []domain.Item {
	return e.runtime.Items(state)
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.runtime.Now()
}

// Config returns the validated configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Resolve applies the configured fallback copy to an upstream content object.
func (e *Engine) Resolve(c content.Content) content.Resolved {
	return content.Resolve(c, e.cfg.Fallback)
}
