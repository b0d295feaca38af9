package runtime

import (
	"context"
	"fmt"
	"math"

	"github.com/aretw0/unveil/pkg/domain"
)

// HandleExplicitAction reveals the milestone item regardless of the current progress.
func (e *Engine) HandleExplicitAction(ctx context.Context, s *domain.State) bool {
	return e.reveal(ctx, s, e.cfg.MilestoneItem, domain.TriggerAction)
}

// HandleScrollSignal accumulates scroll distance and reveals the next eligible item once
// the scroll or dwell threshold is met. Nothing happens before the milestone is revealed.
func (e *Engine) HandleScrollSignal(ctx context.Context, s *domain.State, delta float64) bool {
	if !s.IsRevealed(e.cfg.MilestoneItem) {
		return false
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return false
	}

	s.ScrollDistance += math.Abs(delta)
	return e.advance(ctx, s)
}

// HandleTimeSignal fires the cascade tasks that are due and evaluates the dwell threshold.
// It returns the revealed items in order.
func (e *Engine) HandleTimeSignal(ctx context.Context, s *domain.State) []string {
	revealed := e.runDue(ctx, s)
	if s.IsRevealed(e.cfg.MilestoneItem) && e.advance(ctx, s) {
		revealed = append(revealed, s.Revealed[len(s.Revealed)-1])
	}
	return revealed
}

// advance reveals the next eligible item if either threshold is met.
func (e *Engine) advance(ctx context.Context, s *domain.State) bool {
	byScroll := s.ScrollDistance >= e.cfg.ScrollThreshold
	byDwell := e.clock.Now().Sub(s.LastRevealAt) >= e.cfg.DwellThreshold
	if !byScroll && !byDwell {
		return false
	}

	next, ok := e.FindNextEligibleItem(s)
	if !ok {
		return false
	}

	trigger := domain.TriggerDwell
	if byScroll {
		trigger = domain.TriggerScroll
	}
	if !e.reveal(ctx, s, next, trigger) {
		return false
	}
	s.ScrollDistance = 0
	return true
}

// FindNextEligibleItem returns the lowest-position hidden item that is not a cascade item.
func (e *Engine) FindNextEligibleItem(s *domain.State) (string, bool) {
	for _, id := range e.cfg.Items {
		if e.cfg.IsCascade(id) || s.IsRevealed(id) {
			continue
		}
		return id, true
	}
	return "", false
}

// Apply is the single entry point for hosts driving the engine from an event queue.
// Due cascade tasks fire before and after the signal is handled.
// It returns domain.ErrUnknownSignal for unrecognized signal types.
func (e *Engine) Apply(ctx context.Context, s *domain.State, sig domain.Signal) (domain.Outcome, error) {
	var out domain.Outcome
	out.Revealed = append(out.Revealed, e.runDue(ctx, s)...)

	before := len(s.Revealed)
	switch sig.Type {
	case domain.SignalAction:
		e.HandleExplicitAction(ctx, s)
	case domain.SignalScroll:
		e.HandleScrollSignal(ctx, s, sig.Delta)
	case domain.SignalTick:
		if s.IsRevealed(e.cfg.MilestoneItem) {
			e.advance(ctx, s)
		}
	case domain.SignalReveal:
		e.RevealItem(ctx, s, sig.Item)
	default:
		return out, fmt.Errorf("%w: %q", domain.ErrUnknownSignal, sig.Type)
	}
	out.Revealed = append(out.Revealed, s.Revealed[before:]...)

	out.Revealed = append(out.Revealed, e.runDue(ctx, s)...)
	return out, nil
}
