package domain

import (
	"context"
	"time"
)

// Trigger describes why an item was revealed.
type Trigger string

const (
	TriggerDirect  Trigger = "direct"
	TriggerAction  Trigger = "action"
	TriggerScroll  Trigger = "scroll"
	TriggerDwell   Trigger = "dwell"
	TriggerCascade Trigger = "cascade"
)

// RevealEvent is emitted for every successful reveal.
type RevealEvent struct {
	Timestamp time.Time `json:"timestamp"`
	ViewID    string    `json:"view_id"`
	ItemID    string    `json:"item_id"`
	Position  int       `json:"position"`
	Trigger   Trigger   `json:"trigger"`
	Count     int       `json:"count"`
}

// CascadeEvent is emitted when a cascade reveal is scheduled.
type CascadeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	ViewID    string    `json:"view_id"`
	ItemID    string    `json:"item_id"`
	DueAt     time.Time `json:"due_at"`
}

// PanelEvent is emitted once, when the auxiliary panel is suppressed.
type PanelEvent struct {
	Timestamp time.Time `json:"timestamp"`
	ViewID    string    `json:"view_id"`
	ItemID    string    `json:"item_id"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnReveal          func(context.Context, *RevealEvent)
	OnCascadeSchedule func(context.Context, *CascadeEvent)
	OnPanelSuppress   func(context.Context, *PanelEvent)
}
