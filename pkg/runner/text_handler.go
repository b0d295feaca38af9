package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/unveil/pkg/domain"
)

// ParseText decodes the line protocol used on terminals:
//
//	action
//	scroll <delta>
//	tick
//	reveal <item>
//
// Commands may be abbreviated to their first letter.
func ParseText(line string) (domain.Signal, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Signal{}, fmt.Errorf("%w: empty line", domain.ErrUnknownSignal)
	}

	switch strings.ToLower(fields[0]) {
	case "action", "a", "continue":
		return domain.Signal{Type: domain.SignalAction}, nil
	case "tick", "t":
		return domain.Signal{Type: domain.SignalTick}, nil
	case "scroll", "s":
		if len(fields) < 2 {
			return domain.Signal{}, fmt.Errorf("scroll needs a delta")
		}
		delta, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return domain.Signal{}, fmt.Errorf("invalid scroll delta %q: %w", fields[1], err)
		}
		return domain.Signal{Type: domain.SignalScroll, Delta: delta}, nil
	case "reveal", "r":
		if len(fields) < 2 {
			return domain.Signal{}, fmt.Errorf("reveal needs an item")
		}
		return domain.Signal{Type: domain.SignalReveal, Item: fields[1]}, nil
	}
	return domain.Signal{}, fmt.Errorf("%w: %q", domain.ErrUnknownSignal, fields[0])
}

// Formatter renders one decision as a single line.
type Formatter func(d Decision) string

// TextHandler writes decisions as a human-readable timeline.
type TextHandler struct {
	mu     sync.Mutex
	Writer io.Writer
	Format Formatter
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithFormatter replaces the plain line format (e.g. with a colored one).
func WithFormatter(f Formatter) TextHandlerOption {
	return func(h *TextHandler) {
		h.Format = f
	}
}

// NewTextHandler creates a handler writing to w (stdout when nil).
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w, Format: FormatPlain}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Output writes one line per decision. Decisions without reveals are skipped.
func (h *TextHandler) Output(ctx context.Context, d Decision) error {
	if len(d.Revealed) == 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, h.Format(d))
	return err
}

// FormatPlain renders "+<elapsed> <cause> <items>".
func FormatPlain(d Decision) string {
	return fmt.Sprintf("+%-8s %-8s %s", d.Elapsed.Round(time.Millisecond), d.Cause, strings.Join(d.Revealed, ", "))
}
