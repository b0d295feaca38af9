package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/pkg/domain"
)

// Engine is the subset of the disclosure engine the runner needs.
type Engine interface {
	Start(ctx context.Context, viewID string) *domain.State
	Apply(ctx context.Context, s *domain.State, sig domain.Signal) (domain.Outcome, error)
	FireDue(ctx context.Context, s *domain.State) []string
	NextDue(s *domain.State) (time.Time, bool)
	Now() time.Time
}

// Cause values reported on decisions that were not caused by a signal.
const (
	CauseOpen    = "open"
	CauseCascade = "cascade"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("runner input closed")

// Decision reports what changed after one event of the loop.
type Decision struct {
	ViewID   string            `json:"view_id"`
	At       time.Time         `json:"at"`
	Elapsed  time.Duration     `json:"elapsed"`
	Cause    string            `json:"cause"`
	Revealed []string          `json:"revealed,omitempty"`
	Diff     *domain.StateDiff `json:"diff,omitempty"`
}

// Handler receives decisions from the loop. It is called from the Run goroutine.
type Handler interface {
	Output(ctx context.Context, d Decision) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, d Decision) error

// Output calls f.
func (f HandlerFunc) Output(ctx context.Context, d Decision) error {
	return f(ctx, d)
}

// Runner serializes signals for one view onto one engine.
type Runner struct {
	engine     Engine
	handler    Handler
	logger     *slog.Logger
	viewID     string
	tick       time.Duration
	bufferSize int

	in        chan domain.Signal
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	state *domain.State
}

// New creates a Runner. Run must be called to start the loop.
func New(engine Engine, opts ...Option) *Runner {
	r := &Runner{
		engine:     engine,
		logger:     logging.NewNop(),
		bufferSize: DefaultInputBufferSize,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	r.in = make(chan domain.Signal, r.bufferSize)
	return r
}

// Send queues a signal. It blocks while the queue is full.
func (r *Runner) Send(ctx context.Context, sig domain.Signal) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.in <- sig:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the input. Run returns once the queued signals are applied.
// Pending cascade tasks are dropped with the view.
func (r *Runner) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// State returns a copy of the current disclosure state, or nil before Run starts.
func (r *Runner) State() *domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Run executes the loop until ctx is cancelled or Close is called.
// It returns nil on Close and ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.state == nil {
		r.state = r.engine.Start(ctx, r.viewID)
	}
	r.mu.Unlock()

	r.logger.Debug("runner started", "view", r.state.ViewID)
	if err := r.emit(ctx, CauseOpen, nil, nil); err != nil {
		return err
	}

	var ticks <-chan time.Time
	if r.tick > 0 {
		ticker := time.NewTicker(r.tick)
		defer ticker.Stop()
		ticks = ticker.C
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		wake := r.arm(timer)

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-r.done:
			return r.drain(ctx)

		case sig := <-r.in:
			if err := r.apply(ctx, sig); err != nil {
				return err
			}

		case <-wake:
			if err := r.fire(ctx); err != nil {
				return err
			}

		case <-ticks:
			if err := r.apply(ctx, domain.Signal{Type: domain.SignalTick}); err != nil {
				return err
			}
		}
	}
}

// arm resets the timer to the next due cascade task and returns its channel,
// or nil when nothing is scheduled.
func (r *Runner) arm(timer *time.Timer) <-chan time.Time {
	due, ok := r.engine.NextDue(r.state)
	if !ok {
		timer.Stop()
		return nil
	}
	wait := max(due.Sub(r.engine.Now()), 0)
	timer.Reset(wait)
	return timer.C
}

func (r *Runner) drain(ctx context.Context) error {
	for {
		select {
		case sig := <-r.in:
			if err := r.apply(ctx, sig); err != nil {
				return err
			}
		default:
			r.logger.Debug("runner closed", "view", r.state.ViewID, "pending", len(r.state.Pending))
			return nil
		}
	}
}

func (r *Runner) apply(ctx context.Context, sig domain.Signal) error {
	r.mu.Lock()
	before := r.state.Clone()
	out, err := r.engine.Apply(ctx, r.state, sig)
	r.mu.Unlock()

	cause := string(sig.Type)
	if err != nil {
		r.logger.Warn("signal rejected", "view", r.state.ViewID, "type", sig.Type, "err", err)
		// due cascade tasks may still have fired
		cause = CauseCascade
	}
	if !out.Changed() && domain.Diff(before, r.state) == nil {
		return nil
	}
	return r.emit(ctx, cause, before, out.Revealed)
}

func (r *Runner) fire(ctx context.Context) error {
	r.mu.Lock()
	before := r.state.Clone()
	revealed := r.engine.FireDue(ctx, r.state)
	r.mu.Unlock()

	if len(revealed) == 0 {
		return nil
	}
	return r.emit(ctx, CauseCascade, before, revealed)
}

func (r *Runner) emit(ctx context.Context, cause string, before *domain.State, revealed []string) error {
	if r.handler == nil {
		return nil
	}
	now := r.engine.Now()
	d := Decision{
		ViewID:   r.state.ViewID,
		At:       now,
		Elapsed:  now.Sub(r.state.CreatedAt),
		Cause:    cause,
		Revealed: revealed,
		Diff:     domain.Diff(before, r.state),
	}
	if err := r.handler.Output(ctx, d); err != nil {
		return fmt.Errorf("handler failed: %w", err)
	}
	return nil
}
