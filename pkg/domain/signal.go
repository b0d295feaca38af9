package domain

// SignalType names the external triggers a host can feed into the engine.
type SignalType string

const (
	SignalAction SignalType = "action" // Explicit user action (e.g. a click on "continue")
	SignalScroll SignalType = "scroll" // Scroll movement, Delta in pixels
	SignalTick   SignalType = "tick"   // Time check: fires due cascade tasks and evaluates dwell
	SignalReveal SignalType = "reveal" // Direct reveal of Item
)

// Signal is a single event from the host.
type Signal struct {
	Type  SignalType `json:"type" yaml:"type"`
	Delta float64    `json:"delta,omitempty" yaml:"delta,omitempty"`
	Item  string     `json:"item,omitempty" yaml:"item,omitempty"`
}

// Outcome lists the items revealed while handling a signal, in reveal order.
type Outcome struct {
	Revealed []string `json:"revealed"`
}

// Changed reports whether anything was revealed.
func (o Outcome) Changed() bool {
	return len(o.Revealed) > 0
}
