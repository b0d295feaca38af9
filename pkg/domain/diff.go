package domain

import "reflect"

// StateDiff represents the changes between two snapshots of a view.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// ViewID is always present to identify the target.
	ViewID string `json:"view_id"`

	// Revealed contains items revealed since the old snapshot, in reveal order.
	Revealed *RevealDelta `json:"revealed,omitempty"`

	// PanelSuppressed is set when the auxiliary panel visibility changed.
	PanelSuppressed *bool `json:"panel_suppressed,omitempty"`

	// Pending carries the full cascade schedule when it changed.
	Pending []Task `json:"pending,omitempty"`
}

// RevealDelta lists newly revealed items.
type RevealDelta struct {
	Appended []string `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		ViewID:   newState.ViewID,
		Revealed: diffRevealed(oldState, newState),
	}

	if oldState == nil {
		if newState.PanelSuppressed {
			diff.PanelSuppressed = &newState.PanelSuppressed
		}
	} else if oldState.PanelSuppressed != newState.PanelSuppressed {
		diff.PanelSuppressed = &newState.PanelSuppressed
	}

	if (oldState == nil && len(newState.Pending) > 0) ||
		(oldState != nil && !reflect.DeepEqual(oldState.Pending, newState.Pending)) {
		diff.Pending = newState.Pending
		if diff.Pending == nil {
			diff.Pending = []Task{}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffRevealed relies on Revealed being append-only.
func diffRevealed(old, new *State) *RevealDelta {
	if len(new.Revealed) == 0 {
		return nil
	}
	if old == nil {
		return &RevealDelta{Appended: new.Revealed}
	}
	if len(new.Revealed) > len(old.Revealed) {
		return &RevealDelta{Appended: new.Revealed[len(old.Revealed):]}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Revealed == nil &&
		d.PanelSuppressed == nil &&
		d.Pending == nil
}
