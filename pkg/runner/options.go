package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/unveil/pkg/domain"
)

// DefaultInputBufferSize is the default number of signals queued ahead of the loop.
const DefaultInputBufferSize = 64

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHandler configures where decisions are sent.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithViewID names the view started by Run. Ignored when WithInitialState is used.
func WithViewID(id string) Option {
	return func(r *Runner) {
		r.viewID = id
	}
}

// WithInitialState resumes an existing view instead of starting a new one.
func WithInitialState(s *domain.State) Option {
	return func(r *Runner) {
		r.state = s.Clone()
	}
}

// WithTickInterval makes the loop send itself a tick signal at the given interval,
// so the dwell threshold is evaluated while the reader is idle. Zero disables it.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.tick = d
	}
}

// WithBufferSize sets the capacity of the signal queue.
func WithBufferSize(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.bufferSize = n
		}
	}
}
