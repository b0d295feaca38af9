package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/domain"
)

// Engine is the core disclosure state machine.
// It holds the rules only: every operation takes the view State explicitly and mutates it
// in place. The engine never blocks and never returns errors from reveal operations;
// absence of effect is reported as false.
type Engine struct {
	cfg    config.Config
	clock  clock.Clock
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithClock sets the time source (default: wall clock).
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine for the given configuration.
// The configuration is expected to be valid (see config.Config.Validate).
func NewEngine(cfg config.Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:    cfg,
		clock:  clock.Real{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Now returns the engine's notion of the current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Start creates the disclosure state of a freshly opened view.
func (e *Engine) Start(ctx context.Context, viewID string) *domain.State {
	s := domain.NewState(viewID, e.clock.Now())
	e.logger.Debug("view started", "view", viewID)
	return s
}

// Items lists every configured item with its visibility in s.
func (e *Engine) Items(s *domain.State) []domain.Item {
	items := make([]domain.Item, len(e.cfg.Items))
	for i, id := range e.cfg.Items {
		st := domain.Hidden
		if s.IsRevealed(id) {
			st = domain.Revealed
		}
		items[i] = domain.Item{ID: id, Position: i, State: st}
	}
	return items
}

func (e *Engine) emitReveal(ctx context.Context, s *domain.State, id string, trigger domain.Trigger) {
	if e.hooks.OnReveal == nil {
		return
	}
	e.hooks.OnReveal(ctx, &domain.RevealEvent{
		Timestamp: s.LastRevealAt,
		ViewID:    s.ViewID,
		ItemID:    id,
		Position:  e.cfg.Position(id),
		Trigger:   trigger,
		Count:     s.RevealCount,
	})
}

func (e *Engine) emitCascade(ctx context.Context, s *domain.State, task domain.Task) {
	if e.hooks.OnCascadeSchedule == nil {
		return
	}
	e.hooks.OnCascadeSchedule(ctx, &domain.CascadeEvent{
		Timestamp: e.clock.Now(),
		ViewID:    s.ViewID,
		ItemID:    task.ItemID,
		DueAt:     task.DueAt,
	})
}

func (e *Engine) emitPanel(ctx context.Context, s *domain.State, id string) {
	if e.hooks.OnPanelSuppress == nil {
		return
	}
	e.hooks.OnPanelSuppress(ctx, &domain.PanelEvent{
		Timestamp: s.LastRevealAt,
		ViewID:    s.ViewID,
		ItemID:    id,
	})
}
