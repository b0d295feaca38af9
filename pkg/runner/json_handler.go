package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/unveil/pkg/domain"
)

// ParseJSON decodes a signal object such as {"type":"scroll","delta":120}.
// A bare JSON string is treated as a text command.
func ParseJSON(line string) (domain.Signal, error) {
	var cmd string
	if err := json.Unmarshal([]byte(line), &cmd); err == nil {
		return ParseText(cmd)
	}

	var sig domain.Signal
	if err := json.Unmarshal([]byte(line), &sig); err != nil {
		return domain.Signal{}, fmt.Errorf("invalid signal: %w", err)
	}
	if sig.Type == "" {
		return domain.Signal{}, fmt.Errorf("%w: missing type", domain.ErrUnknownSignal)
	}
	return sig, nil
}

// JSONHandler emits every decision as one JSON line, including the opening one.
type JSONHandler struct {
	mu      sync.Mutex
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler writing to w (stdout when nil).
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{Encoder: json.NewEncoder(w)}
}

// Output encodes d.
func (h *JSONHandler) Output(ctx context.Context, d Decision) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(d)
}
