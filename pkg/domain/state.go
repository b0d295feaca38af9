package domain

import (
	"slices"
	"time"
)

// Task is a scheduled reveal of a cascade item.
// Step is the index of the item in the cascade chain.
type Task struct {
	ItemID string    `json:"item_id"`
	Step   int       `json:"step"`
	DueAt  time.Time `json:"due_at"`
}

// State represents the disclosure progress of a single page view.
// It lives as long as the view and is discarded on navigation.
type State struct {
	// ViewID identifies the page view owning this state.
	ViewID string `json:"view_id"`

	// CreatedAt is the time the view was opened.
	CreatedAt time.Time `json:"created_at"`

	// Revealed holds the revealed item IDs in reveal order.
	Revealed []string `json:"revealed"`

	// RevealCount is the number of successful reveals.
	RevealCount int `json:"reveal_count"`

	// LastRevealAt is the time of the last successful reveal (or view creation).
	LastRevealAt time.Time `json:"last_reveal_at"`

	// ScrollDistance is the scroll distance accumulated since the last reveal.
	ScrollDistance float64 `json:"scroll_distance"`

	// PanelSuppressed reports whether the auxiliary panel has been hidden.
	PanelSuppressed bool `json:"panel_suppressed"`

	// CascadeScheduled is set once the cascade chain has been started.
	CascadeScheduled bool `json:"cascade_scheduled"`

	// Pending holds cascade reveals that have not fired yet.
	Pending []Task `json:"pending,omitempty"`
}

// NewState creates a fresh state for a view opened at the given time.
func NewState(viewID string, now time.Time) *State {
	return &State{
		ViewID:       viewID,
		CreatedAt:    now,
		Revealed:     []string{},
		LastRevealAt: now,
	}
}

// IsRevealed reports whether the item has been revealed.
func (s *State) IsRevealed(id string) bool {
	return slices.Contains(s.Revealed, id)
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Revealed = slices.Clone(s.Revealed)
	if next.Revealed == nil {
		next.Revealed = []string{}
	}
	next.Pending = slices.Clone(s.Pending)
	return &next
}
