package http

import (
	"time"

	"github.com/aretw0/unveil/pkg/content"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/gate"
)

// CreateViewRequest opens a view. Content is the loosely typed upstream content object.
type CreateViewRequest struct {
	ViewID  string         `json:"view_id,omitempty"`
	Content map[string]any `json:"content,omitempty"`
}

// ItemView is the per-item visibility sent to clients.
type ItemView struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Revealed bool   `json:"revealed"`
}

// View is the client representation of a view's disclosure state.
type View struct {
	ViewID          string            `json:"view_id"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []ItemView        `json:"items"`
	Revealed        []string          `json:"revealed"`
	RevealCount     int               `json:"reveal_count"`
	PanelSuppressed bool              `json:"panel_suppressed"`
	NextDue         *time.Time        `json:"next_due,omitempty"`
	Content         *content.Resolved `json:"content,omitempty"`
}

// SignalResponse reports what a signal revealed along with the resulting view.
type SignalResponse struct {
	Revealed []string `json:"revealed"`
	View     View     `json:"view"`
}

// GateRequest asks whether an analysis may run.
type GateRequest struct {
	Text string     `json:"text"`
	User *gate.User `json:"user,omitempty"`
}

// GateResponse carries the decision and the page features for the visitor.
type GateResponse struct {
	gate.Decision
	Features gate.Features `json:"features"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) viewFromDomain(state *domain.State) View {
	items := s.engine.Items(state)
	v := View{
		ViewID:          state.ViewID,
		CreatedAt:       state.CreatedAt,
		Items:           make([]ItemView, len(items)),
		Revealed:        state.Revealed,
		RevealCount:     state.RevealCount,
		PanelSuppressed: state.PanelSuppressed,
	}
	if v.Revealed == nil {
		v.Revealed = []string{}
	}
	for i, it := range items {
		v.Items[i] = ItemView{ID: it.ID, Position: it.Position, Revealed: it.State == domain.Revealed}
	}
	if due, ok := s.engine.NextDue(state); ok {
		v.NextDue = &due
	}
	return v
}
