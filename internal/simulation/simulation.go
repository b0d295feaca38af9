package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/pkg/clock"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/runner"
)

// Epoch is the virtual time at which every simulated view opens.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of a simulation.
type Result struct {
	Decisions []runner.Decision
	State     *domain.State
}

// Option configures Run.
type Option func(*options)

type options struct {
	engineOpts []unveil.Option
}

// WithEngineOptions passes extra options (logger, hooks) to the simulated engine.
func WithEngineOptions(opts ...unveil.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// Run replays the script. Cascade tasks fire at their exact due time, between steps.
// A step with an unknown signal type aborts the simulation.
func Run(ctx context.Context, cfg config.Config, script Script, opts ...Option) (Result, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	clk := clock.NewManual(Epoch)
	engineOpts := append([]unveil.Option{unveil.WithConfig(cfg), unveil.WithClock(clk)}, o.engineOpts...)
	eng, err := unveil.New(engineOpts...)
	if err != nil {
		return Result{}, err
	}

	sim := &simulator{
		ctx:    ctx,
		eng:    eng,
		clk:    clk,
		tick:   script.TickEvery,
		state:  eng.Start(ctx, script.View),
		result: Result{},
	}
	if sim.tick > 0 {
		sim.nextTick = Epoch.Add(sim.tick)
	}

	for i, st := range script.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		sim.advanceTo(Epoch.Add(st.At))
		if err := sim.apply(st.Signal); err != nil {
			return Result{}, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	if script.Duration > 0 {
		sim.advanceTo(Epoch.Add(script.End()))
	} else {
		sim.drain()
	}

	sim.result.State = sim.state
	return sim.result, nil
}

type simulator struct {
	ctx      context.Context
	eng      *unveil.Engine
	clk      *clock.Manual
	tick     time.Duration
	nextTick time.Time
	state    *domain.State
	result   Result
}

// advanceTo fires every cascade task and injected tick due up to t, in time order,
// then sets the clock to t.
func (s *simulator) advanceTo(t time.Time) {
	for {
		due, ok := s.eng.NextDue(s.state)
		tickDue := s.tick > 0 && !s.nextTick.After(t)

		switch {
		case ok && !due.After(t) && (!tickDue || !due.After(s.nextTick)):
			s.clk.Set(due)
			s.fire()
		case tickDue:
			s.clk.Set(s.nextTick)
			s.nextTick = s.nextTick.Add(s.tick)
			_ = s.apply(domain.Signal{Type: domain.SignalTick})
		default:
			if t.After(s.clk.Now()) {
				s.clk.Set(t)
			}
			return
		}
	}
}

// drain runs the clock until no cascade task is pending.
func (s *simulator) drain() {
	for {
		due, ok := s.eng.NextDue(s.state)
		if !ok {
			return
		}
		s.advanceTo(due)
	}
}

func (s *simulator) fire() {
	before := s.state.Clone()
	if revealed := s.eng.FireDue(s.ctx, s.state); len(revealed) > 0 {
		s.record(runner.CauseCascade, before, revealed)
	}
}

func (s *simulator) apply(sig domain.Signal) error {
	before := s.state.Clone()
	out, err := s.eng.Apply(s.ctx, s.state, sig)
	if err != nil {
		return err
	}
	if out.Changed() {
		s.record(string(sig.Type), before, out.Revealed)
	}
	return nil
}

func (s *simulator) record(cause string, before *domain.State, revealed []string) {
	now := s.clk.Now()
	s.result.Decisions = append(s.result.Decisions, runner.Decision{
		ViewID:   s.state.ViewID,
		At:       now,
		Elapsed:  now.Sub(s.state.CreatedAt),
		Cause:    cause,
		Revealed: revealed,
		Diff:     domain.Diff(before, s.state),
	})
}
