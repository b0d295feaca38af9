package runtime

import (
	"context"
	"slices"
	"time"

	"github.com/aretw0/unveil/pkg/domain"
)

// RevealItem reveals id directly. It is a no-op (false) when id is unknown or already revealed.
func (e *Engine) RevealItem(ctx context.Context, s *domain.State, id string) bool {
	return e.reveal(ctx, s, id, domain.TriggerDirect)
}

// reveal performs the Hidden->Revealed transition and its side effects.
func (e *Engine) reveal(ctx context.Context, s *domain.State, id string, trigger domain.Trigger) bool {
	if e.cfg.Position(id) < 0 {
		e.logger.Debug("reveal ignored: unknown item", "view", s.ViewID, "item", id)
		return false
	}
	if s.IsRevealed(id) {
		return false
	}

	now := e.clock.Now()
	s.Revealed = append(s.Revealed, id)
	s.RevealCount++
	s.LastRevealAt = now
	s.ScrollDistance = 0

	e.logger.Debug("item revealed", "view", s.ViewID, "item", id, "trigger", trigger, "count", s.RevealCount)
	e.emitReveal(ctx, s, id, trigger)

	if id == e.cfg.MilestoneItem && !s.PanelSuppressed {
		s.PanelSuppressed = true
		e.emitPanel(ctx, s, id)
	}

	e.maybeScheduleCascade(ctx, s, now)
	return true
}

// progress counts revealed items that are not cascade items.
// Cascade reveals never count toward starting the cascade.
func (e *Engine) progress(s *domain.State) int {
	n := 0
	for _, id := range s.Revealed {
		if !e.cfg.IsCascade(id) {
			n++
		}
	}
	return n
}

// maybeScheduleCascade starts the cascade chain at most once per view.
func (e *Engine) maybeScheduleCascade(ctx context.Context, s *domain.State, now time.Time) {
	if s.CascadeScheduled || len(e.cfg.CascadeItems) == 0 {
		return
	}
	if e.progress(s) < e.cfg.CascadeThreshold {
		return
	}
	if e.cascadeDone(s) {
		return
	}

	s.CascadeScheduled = true
	e.schedule(ctx, s, 0, now.Add(e.cfg.CascadeDelays[0]))
}

func (e *Engine) cascadeDone(s *domain.State) bool {
	for _, id := range e.cfg.CascadeItems {
		if !s.IsRevealed(id) {
			return false
		}
	}
	return true
}

func (e *Engine) schedule(ctx context.Context, s *domain.State, step int, due time.Time) {
	task := domain.Task{
		ItemID: e.cfg.CascadeItems[step],
		Step:   step,
		DueAt:  due,
	}
	s.Pending = append(s.Pending, task)
	e.logger.Debug("cascade scheduled", "view", s.ViewID, "item", task.ItemID, "due", due)
	e.emitCascade(ctx, s, task)
}

// FireDue fires the cascade tasks that are due without evaluating dwell.
// Hosts sweeping idle views use it so that only scheduled reveals happen without a client signal.
func (e *Engine) FireDue(ctx context.Context, s *domain.State) []string {
	return e.runDue(ctx, s)
}

// runDue fires every pending cascade task due at the current time, earliest first.
// Each fired step chains the next one, measured from the fired step's due time.
func (e *Engine) runDue(ctx context.Context, s *domain.State) []string {
	now := e.clock.Now()
	var revealed []string

	for {
		idx := -1
		for i, t := range s.Pending {
			if t.DueAt.After(now) {
				continue
			}
			if idx < 0 || t.DueAt.Before(s.Pending[idx].DueAt) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}

		task := s.Pending[idx]
		s.Pending = slices.Delete(s.Pending, idx, idx+1)

		if e.reveal(ctx, s, task.ItemID, domain.TriggerCascade) {
			revealed = append(revealed, task.ItemID)
		}

		next := task.Step + 1
		if next < len(e.cfg.CascadeItems) {
			e.schedule(ctx, s, next, task.DueAt.Add(e.cfg.CascadeDelays[next]))
		}
	}

	if len(s.Pending) == 0 {
		s.Pending = nil
	}
	return revealed
}

// NextDue returns the due time of the earliest pending cascade task.
func (e *Engine) NextDue(s *domain.State) (time.Time, bool) {
	var next time.Time
	found := false
	for _, t := range s.Pending {
		if !found || t.DueAt.Before(next) {
			next = t.DueAt
			found = true
		}
	}
	return next, found
}
